package pyxis

import (
	"fmt"
	"strings"
)

const (
	// DefaultPageSize is used when a list operation does not set a page size
	DefaultPageSize = 20
	// MaxPageSize is the largest page Pyxis will return
	MaxPageSize = 100
)

// ListOptions holds the pagination settings shared by all list operations
type ListOptions struct {
	Page     int
	PageSize int
}

func (l *ListOptions) listOptions() *ListOptions {
	return l
}

func (l *ListOptions) pageSize() int {
	if l.PageSize <= 0 {
		return DefaultPageSize
	}
	return min(l.PageSize, MaxPageSize)
}

// SearchImagesOptions is the options for the SearchImages operation
type SearchImagesOptions struct {
	ListOptions
	Query        string
	Architecture string
	Registry     string
	Certified    *bool
}

// SearchProjectsOptions is the options for the SearchCertificationProjects operation
type SearchProjectsOptions struct {
	ListOptions
	Query  string
	Status string
}

// SearchOperatorsOptions is the options for the SearchOperators operation
type SearchOperatorsOptions struct {
	ListOptions
	Query   string
	Package string
}

// SearchRepositoriesOptions is the options for the SearchRepositories operation
type SearchRepositoriesOptions struct {
	ListOptions
	Query    string
	Registry string
}

// VulnerabilityOptions is the options for the GetImageVulnerabilities operation
type VulnerabilityOptions struct {
	ListOptions
}

// Option is a function that sets an option for a client operation
type Option[T SearchImagesOptions |
	SearchProjectsOptions |
	SearchOperatorsOptions |
	SearchRepositoriesOptions |
	VulnerabilityOptions,
] func(*T) error

type paginated interface {
	listOptions() *ListOptions
}

// WithPage sets the zero-based page number for a list operation
func WithPage[T SearchImagesOptions |
	SearchProjectsOptions |
	SearchOperatorsOptions |
	SearchRepositoriesOptions |
	VulnerabilityOptions,
](page int) Option[T] {
	return func(o *T) error {
		if page < 0 {
			return fmt.Errorf("%w: page must not be negative, got %d", ErrValidation, page)
		}
		p, ok := any(o).(paginated)
		if !ok {
			return fmt.Errorf("invalid option type: %T", o)
		}
		p.listOptions().Page = page
		return nil
	}
}

// WithPageSize sets the page size for a list operation. Sizes above
// MaxPageSize are capped.
func WithPageSize[T SearchImagesOptions |
	SearchProjectsOptions |
	SearchOperatorsOptions |
	SearchRepositoriesOptions |
	VulnerabilityOptions,
](size int) Option[T] {
	return func(o *T) error {
		if size < 1 {
			return fmt.Errorf("%w: page size must be at least 1, got %d", ErrValidation, size)
		}
		p, ok := any(o).(paginated)
		if !ok {
			return fmt.Errorf("invalid option type: %T", o)
		}
		p.listOptions().PageSize = min(size, MaxPageSize)
		return nil
	}
}

// WithQuery sets the free-text query for a search operation. A blank query
// leaves the search unfiltered.
func WithQuery[T SearchImagesOptions |
	SearchProjectsOptions |
	SearchOperatorsOptions |
	SearchRepositoriesOptions,
](query string) Option[T] {
	return func(o *T) error {
		query = strings.TrimSpace(query)
		switch o := any(o).(type) {
		case *SearchImagesOptions:
			o.Query = query
		case *SearchProjectsOptions:
			o.Query = query
		case *SearchOperatorsOptions:
			o.Query = query
		case *SearchRepositoriesOptions:
			o.Query = query
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
		return nil
	}
}

// WithRegistry sets the registry filter for the SearchImages or
// SearchRepositories operation
func WithRegistry[T SearchImagesOptions | SearchRepositoriesOptions](registry string) Option[T] {
	return func(o *T) error {
		registry = strings.TrimSpace(registry)
		switch o := any(o).(type) {
		case *SearchImagesOptions:
			o.Registry = registry
		case *SearchRepositoriesOptions:
			o.Registry = registry
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
		return nil
	}
}

// WithArchitecture sets the architecture filter for the SearchImages operation
func WithArchitecture(arch string) Option[SearchImagesOptions] {
	return func(o *SearchImagesOptions) error {
		o.Architecture = strings.TrimSpace(arch)
		return nil
	}
}

// WithCertified restricts SearchImages to images with the given certification flag
func WithCertified(certified bool) Option[SearchImagesOptions] {
	return func(o *SearchImagesOptions) error {
		o.Certified = &certified
		return nil
	}
}

// WithStatus sets the certification status filter for the
// SearchCertificationProjects operation
func WithStatus(status string) Option[SearchProjectsOptions] {
	return func(o *SearchProjectsOptions) error {
		o.Status = strings.TrimSpace(status)
		return nil
	}
}

// WithPackage sets the package filter for the SearchOperators operation
func WithPackage(pkg string) Option[SearchOperatorsOptions] {
	return func(o *SearchOperatorsOptions) error {
		o.Package = strings.TrimSpace(pkg)
		return nil
	}
}

// ResolveOptions applies opts to a zero value of T and returns the result
func ResolveOptions[T SearchImagesOptions |
	SearchProjectsOptions |
	SearchOperatorsOptions |
	SearchRepositoriesOptions |
	VulnerabilityOptions,
](opts ...Option[T]) (*T, error) {
	o := new(T)
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
