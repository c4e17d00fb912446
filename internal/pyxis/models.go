package pyxis

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Page is the paginated envelope Pyxis wraps every list response in.
type Page[T any] struct {
	Data     []T `json:"data"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// timestampLayouts are tried in order. Layouts without an offset are read
// as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Timestamp is a Pyxis date. Besides RFC 3339 it accepts dates without an
// offset, so a single naive value does not fail a whole list response.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// IsSet reports whether t holds a date.
func (t *Timestamp) IsSet() bool {
	return t != nil && !t.IsZero()
}

// UnmarshalJSON parses the layouts in timestampLayouts. null and "" leave the
// zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// DisplayData is the catalog text shown for a repository.
type DisplayData struct {
	Name             string `json:"name,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
	LongDescription  string `json:"long_description,omitempty"`
}

// Description returns the short description, or the long one when no short
// description is set.
func (d DisplayData) Description() string {
	if d.ShortDescription != "" {
		return d.ShortDescription
	}
	return d.LongDescription
}

// Tag is a repository tag. Pyxis reports tags either as bare strings or as
// {"name": ..., "added_date": ...} objects; both forms decode into Tag.
type Tag struct {
	Name      string     `json:"name"`
	AddedDate *Timestamp `json:"added_date,omitempty"`
}

// UnmarshalJSON accepts both the string and the object form.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*t = Tag{Name: name}
		return nil
	}

	type plain Tag
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("tag must be a string or an object: %w", err)
	}
	*t = Tag(obj)
	return nil
}

// ImageRepository is a repository an image is published to.
type ImageRepository struct {
	Registry   string     `json:"registry,omitempty"`
	Repository string     `json:"repository,omitempty"`
	PushDate   *Timestamp `json:"push_date,omitempty"`
	Tags       []Tag      `json:"tags,omitempty"`
	Published  *bool      `json:"published,omitempty"`
}

// ContentSet is a content set an image was built from.
type ContentSet struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// BrewBuild identifies the build that produced an image.
type BrewBuild struct {
	Build string `json:"build,omitempty"`
	NVR   string `json:"nvr,omitempty"`
	ID    int64  `json:"id,omitempty"`
}

// FreshnessGrade is a health grade for an image over a period of time.
type FreshnessGrade struct {
	Grade     string     `json:"grade,omitempty"`
	StartDate *Timestamp `json:"start_date,omitempty"`
	EndDate   *Timestamp `json:"end_date,omitempty"`
}

// ContainerImage is a container image as reported by the images endpoints.
type ContainerImage struct {
	ID                    string            `json:"_id"`
	Architecture          string            `json:"architecture,omitempty"`
	Brew                  *BrewBuild        `json:"brew,omitempty"`
	Certified             bool              `json:"certified"`
	ContentSets           []ContentSet      `json:"content_sets,omitempty"`
	CPEIDs                []string          `json:"cpe_ids,omitempty"`
	CreationDate          *Timestamp        `json:"creation_date,omitempty"`
	DockerImageDigest     string            `json:"docker_image_digest,omitempty"`
	FreshnessGrades       []FreshnessGrade  `json:"freshness_grades,omitempty"`
	ImageID               string            `json:"image_id,omitempty"`
	LastUpdateDate        *Timestamp        `json:"last_update_date,omitempty"`
	MediaType             string            `json:"media_type,omitempty"`
	Repositories          []ImageRepository `json:"repositories,omitempty"`
	SumLayerSizeBytes     int64             `json:"sum_layer_size_bytes,omitempty"`
	UncompressedSizeBytes int64             `json:"uncompressed_size_bytes,omitempty"`
}

// Vulnerability is a security finding against an image.
type Vulnerability struct {
	CVE            string     `json:"cve_id,omitempty"`
	CVSSScore      float64    `json:"cvss_score,omitempty"`
	CVSSVector     string     `json:"cvss_vector,omitempty"`
	CWE            string     `json:"cwe,omitempty"`
	Impact         string     `json:"impact,omitempty"`
	PublicDate     *Timestamp `json:"public_date,omitempty"`
	Severity       string     `json:"severity,omitempty"`
	Description    string     `json:"description,omitempty"`
	PackageName    string     `json:"package_name,omitempty"`
	PackageVersion string     `json:"package_version,omitempty"`
	FixedVersion   string     `json:"fixed_version,omitempty"`
}

// UnmarshalJSON accepts both "cve_id" and the older "cve" field name.
func (v *Vulnerability) UnmarshalJSON(data []byte) error {
	type plain Vulnerability
	aux := struct {
		*plain
		LegacyCVE string `json:"cve,omitempty"`
	}{plain: (*plain)(v)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if v.CVE == "" {
		v.CVE = aux.LegacyCVE
	}
	return nil
}

// CertificationProject is a partner certification project.
type CertificationProject struct {
	ID                       string         `json:"_id"`
	Name                     string         `json:"name,omitempty"`
	ProjectStatus            string         `json:"project_status,omitempty"`
	CertificationStatus      string         `json:"certification_status,omitempty"`
	Type                     string         `json:"type,omitempty"`
	ApplicationType          string         `json:"application_type,omitempty"`
	VendorLabel              string         `json:"vendor_label,omitempty"`
	RegistryOverrideInstruct string         `json:"registry_override_instruct,omitempty"`
	ShortDescription         string         `json:"short_description,omitempty"`
	LongDescription          string         `json:"long_description,omitempty"`
	CreationDate             *Timestamp     `json:"creation_date,omitempty"`
	LastUpdateDate           *Timestamp     `json:"last_update_date,omitempty"`
	Container                map[string]any `json:"container,omitempty"`
}

// OperatorBundle is a published operator bundle.
type OperatorBundle struct {
	ID             string     `json:"_id"`
	BundlePath     string     `json:"bundle_path,omitempty"`
	CSVName        string     `json:"csv_name,omitempty"`
	PackageName    string     `json:"package,omitempty"`
	ChannelName    string     `json:"channel_name,omitempty"`
	Channels       []string   `json:"channels,omitempty"`
	Version        string     `json:"version,omitempty"`
	OCPVersion     string     `json:"ocp_version,omitempty"`
	Organization   string     `json:"organization,omitempty"`
	Registry       string     `json:"registry,omitempty"`
	Repository     string     `json:"repository,omitempty"`
	Certified      bool       `json:"certified"`
	CreationDate   *Timestamp `json:"creation_date,omitempty"`
	LastUpdateDate *Timestamp `json:"last_update_date,omitempty"`
}

// UnmarshalJSON accepts both "package" and the older "package_name" field name.
func (o *OperatorBundle) UnmarshalJSON(data []byte) error {
	type plain OperatorBundle
	aux := struct {
		*plain
		LegacyPackage string `json:"package_name,omitempty"`
	}{plain: (*plain)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if o.PackageName == "" {
		o.PackageName = aux.LegacyPackage
	}
	return nil
}

// DisplayName returns the CSV name, falling back to the package name.
func (o *OperatorBundle) DisplayName() string {
	switch {
	case o.CSVName != "":
		return o.CSVName
	case o.PackageName != "":
		return o.PackageName
	default:
		return ""
	}
}

// Repository is a container repository.
type Repository struct {
	ID                string      `json:"_id,omitempty"`
	Registry          string      `json:"registry,omitempty"`
	Repository        string      `json:"repository,omitempty"`
	PushDate          *Timestamp  `json:"push_date,omitempty"`
	Tags              []Tag       `json:"tags,omitempty"`
	Published         bool        `json:"published"`
	VendorLabel       string      `json:"vendor_label,omitempty"`
	ReleaseCategories []string    `json:"release_categories,omitempty"`
	DisplayData       DisplayData `json:"display_data"`
}

// FullName returns "registry/repository", using "unknown" for missing parts.
func (r *Repository) FullName() string {
	registry, repo := r.Registry, r.Repository
	if registry == "" {
		registry = "unknown"
	}
	if repo == "" {
		repo = "unknown"
	}
	return registry + "/" + repo
}
