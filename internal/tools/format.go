package tools

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
)

const (
	maxSummaryRepositories = 3
	maxDetailTags          = 5
	maxRepositoryTags      = 20
	maxCPEIDs              = 3
	maxPerSeverity         = 10
	bytesPerMB             = 1024 * 1024
)

var severityOrder = []string{"Critical", "High", "Medium", "Low", "Unknown"}

func rule(n int) string {
	return strings.Repeat("=", n)
}

func formatTime(t *pyxis.Timestamp) string {
	return t.UTC().Format(time.RFC3339)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func certifiedBadge(certified bool) string {
	if certified {
		return "✓ Certified"
	}
	return "⚠ Not Certified"
}

func tagNames(tags []pyxis.Tag) []string {
	return lo.Map(tags, func(t pyxis.Tag, _ int) string { return t.Name })
}

func noResults(noun string) string {
	return fmt.Sprintf("No %s found matching the specified criteria.", noun)
}

// searchHeader renders the "Found ..." line of a search result.
func searchHeader(total, shown int, noun string) string {
	return fmt.Sprintf("Found %d %s (showing %d):", total, noun, shown)
}

func moreResults(total, shown int) string {
	return fmt.Sprintf("... and %d more results available", total-shown)
}

// imageSummary renders an image as a single line.
func imageSummary(img *pyxis.ContainerImage) string {
	var b strings.Builder
	b.WriteString(img.ID)

	names := lo.FilterMap(
		img.Repositories[:min(len(img.Repositories), maxSummaryRepositories)],
		func(r pyxis.ImageRepository, _ int) (string, bool) {
			return r.Registry + "/" + r.Repository, r.Registry != "" && r.Repository != ""
		},
	)
	if len(names) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(names, ", "))
		if extra := len(img.Repositories) - maxSummaryRepositories; extra > 0 {
			fmt.Fprintf(&b, " +%d more", extra)
		}
	}
	if img.Architecture != "" {
		fmt.Fprintf(&b, " [%s]", img.Architecture)
	}
	b.WriteString(" - " + certifiedBadge(img.Certified))
	return b.String()
}

func projectSummary(p *pyxis.CertificationProject) string {
	return fmt.Sprintf("%s (%s) - Status: %s",
		orDefault(p.Name, "Unnamed Project"),
		orDefault(p.Type, "Unknown Type"),
		orDefault(p.CertificationStatus, "Unknown"))
}

func operatorSummary(o *pyxis.OperatorBundle) string {
	s := orDefault(o.DisplayName(), "Unknown Operator")
	if o.Version != "" {
		s += " v" + o.Version
	}
	return s + " - " + certifiedBadge(o.Certified)
}

func vulnerabilitySummary(v *pyxis.Vulnerability) string {
	s := orDefault(v.CVE, "Unknown CVE") + " - " + orDefault(v.Severity, "Unknown")
	if v.CVSSScore != 0 {
		s += " (CVSS: " + strconv.FormatFloat(v.CVSSScore, 'f', -1, 64) + ")"
	}
	if v.PackageName != "" {
		s += " in " + v.PackageName
	}
	return s
}

// severityGroup maps a Pyxis severity onto one of severityOrder.
func severityGroup(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical":
		return "Critical"
	case "high", "important":
		return "High"
	case "medium", "moderate":
		return "Medium"
	case "low":
		return "Low"
	default:
		return "Unknown"
	}
}

func formatImageSearch(total int, images []pyxis.ContainerImage) string {
	lines := []string{searchHeader(total, len(images), "images"), ""}
	for i := range images {
		lines = append(lines, "• "+imageSummary(&images[i]))
	}
	if total > len(images) {
		lines = append(lines, "", moreResults(total, len(images)))
	}
	return strings.Join(lines, "\n")
}

func formatProjectSearch(total int, projects []pyxis.CertificationProject) string {
	lines := []string{searchHeader(total, len(projects), "certification projects"), ""}
	for i := range projects {
		p := &projects[i]
		lines = append(lines, "• "+projectSummary(p))
		if p.ShortDescription != "" {
			lines = append(lines, "  "+p.ShortDescription)
		}
		lines = append(lines, "")
	}
	if total > len(projects) {
		lines = append(lines, moreResults(total, len(projects)))
	}
	return strings.Join(lines, "\n")
}

func formatOperatorSearch(total int, operators []pyxis.OperatorBundle) string {
	lines := []string{searchHeader(total, len(operators), "operators"), ""}
	for i := range operators {
		o := &operators[i]
		lines = append(lines, "• "+operatorSummary(o))
		if o.Organization != "" {
			lines = append(lines, "  Organization: "+o.Organization)
		}
		if o.BundlePath != "" {
			lines = append(lines, "  Bundle Path: "+o.BundlePath)
		}
		lines = append(lines, "")
	}
	if total > len(operators) {
		lines = append(lines, moreResults(total, len(operators)))
	}
	return strings.Join(lines, "\n")
}

func formatRepositorySearch(total int, repos []pyxis.Repository) string {
	lines := []string{searchHeader(total, len(repos), "repositories"), ""}
	for i := range repos {
		r := &repos[i]
		published := "Not Published"
		if r.Published {
			published = "Published"
		}
		lines = append(lines, fmt.Sprintf("• %s - %s", r.FullName(), published))
		if r.PushDate.IsSet() {
			lines = append(lines, "  Last Push: "+formatTime(r.PushDate))
		}
		if names := tagNames(r.Tags); len(names) > 0 {
			display := strings.Join(names[:min(len(names), maxDetailTags)], ", ")
			if extra := len(names) - maxDetailTags; extra > 0 {
				display += fmt.Sprintf(" +%d more", extra)
			}
			lines = append(lines, "  Tags: "+display)
		}
		lines = append(lines, "")
	}
	if total > len(repos) {
		lines = append(lines, moreResults(total, len(repos)))
	}
	return strings.Join(lines, "\n")
}

func formatImageDetails(img *pyxis.ContainerImage) string {
	lines := []string{"Container Image Details: " + img.ID, rule(50)}

	if len(img.Repositories) > 0 {
		lines = append(lines, "Repositories:")
		for _, r := range img.Repositories {
			if r.Registry == "" || r.Repository == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("  • %s/%s", r.Registry, r.Repository))
			if names := tagNames(r.Tags); len(names) > 0 {
				lines = append(lines, "    Tags: "+strings.Join(names[:min(len(names), maxDetailTags)], ", "))
				if extra := len(names) - maxDetailTags; extra > 0 {
					lines = append(lines, fmt.Sprintf("    ... and %d more tags", extra))
				}
			}
		}
	}

	lines = append(lines,
		"",
		"Architecture: "+orDefault(img.Architecture, "Unknown"),
		"Certified: "+yesNo(img.Certified),
	)
	if img.CreationDate.IsSet() {
		lines = append(lines, "Created: "+formatTime(img.CreationDate))
	}
	if img.LastUpdateDate.IsSet() {
		lines = append(lines, "Last Updated: "+formatTime(img.LastUpdateDate))
	}
	if img.SumLayerSizeBytes > 0 {
		lines = append(lines, fmt.Sprintf("Size: %.1f MB", float64(img.SumLayerSizeBytes)/bytesPerMB))
	}
	if img.UncompressedSizeBytes > 0 {
		lines = append(lines, fmt.Sprintf("Uncompressed Size: %.1f MB", float64(img.UncompressedSizeBytes)/bytesPerMB))
	}
	if img.DockerImageDigest != "" {
		lines = append(lines, "Digest: "+img.DockerImageDigest)
	}
	if img.Brew != nil && img.Brew.Build != "" {
		lines = append(lines, "Brew Build: "+img.Brew.Build)
	}
	if len(img.CPEIDs) > 0 {
		lines = append(lines, "CPE IDs: "+strings.Join(img.CPEIDs[:min(len(img.CPEIDs), maxCPEIDs)], ", "))
		if extra := len(img.CPEIDs) - maxCPEIDs; extra > 0 {
			lines = append(lines, fmt.Sprintf("... and %d more", extra))
		}
	}
	if len(img.ContentSets) > 0 {
		lines = append(lines, fmt.Sprintf("Content Sets: %d available", len(img.ContentSets)))
	}
	if len(img.FreshnessGrades) > 0 {
		lines = append(lines, fmt.Sprintf("Freshness Grades: %d available", len(img.FreshnessGrades)))
	}

	return strings.Join(lines, "\n")
}

// formatVulnerabilities renders the vulnerabilities of an image grouped by
// severity. vulns is already truncated to maxShown.
func formatVulnerabilities(imageID string, total, maxShown int, vulns []pyxis.Vulnerability) string {
	lines := []string{
		"Security Vulnerabilities for Image " + imageID,
		rule(60),
		searchHeader(total, len(vulns), "vulnerabilities"),
		"",
	}

	groups := lo.GroupBy(vulns, func(v pyxis.Vulnerability) string {
		return severityGroup(v.Severity)
	})
	for _, severity := range severityOrder {
		group, ok := groups[severity]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s Severity (%d):", severity, len(group)))
		for i := range group[:min(len(group), maxPerSeverity)] {
			lines = append(lines, "  • "+vulnerabilitySummary(&group[i]))
		}
		if extra := len(group) - maxPerSeverity; extra > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more %s vulnerabilities", extra, strings.ToLower(severity)))
		}
		lines = append(lines, "")
	}

	if total > maxShown {
		lines = append(lines, fmt.Sprintf("... and %d more vulnerabilities available", total-maxShown))
	}
	return strings.Join(lines, "\n")
}

func formatProjectDetails(p *pyxis.CertificationProject) string {
	lines := []string{
		"Certification Project Details: " + orDefault(p.Name, "Unnamed Project"),
		rule(60),
		"ID: " + p.ID,
		"Type: " + orDefault(p.Type, "Unknown"),
		"Application Type: " + orDefault(p.ApplicationType, "Unknown"),
		"Project Status: " + orDefault(p.ProjectStatus, "Unknown"),
		"Certification Status: " + orDefault(p.CertificationStatus, "Unknown"),
	}
	if p.VendorLabel != "" {
		lines = append(lines, "Vendor: "+p.VendorLabel)
	}
	if p.CreationDate.IsSet() {
		lines = append(lines, "Created: "+formatTime(p.CreationDate))
	}
	if p.LastUpdateDate.IsSet() {
		lines = append(lines, "Last Updated: "+formatTime(p.LastUpdateDate))
	}

	for _, section := range []struct{ title, body string }{
		{"Short Description", p.ShortDescription},
		{"Description", p.LongDescription},
		{"Registry Override Instructions", p.RegistryOverrideInstruct},
	} {
		if section.body != "" {
			lines = append(lines, "", section.title+":", section.body)
		}
	}

	if len(p.Container) > 0 {
		lines = append(lines, "", "Container Information:")
		for _, key := range slices.Sorted(maps.Keys(p.Container)) {
			if value, ok := scalarString(p.Container[key]); ok {
				lines = append(lines, fmt.Sprintf("  %s: %s", key, value))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// scalarString formats JSON scalars. Objects, arrays and nulls are skipped.
func scalarString(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func formatOperatorDetails(o *pyxis.OperatorBundle) string {
	lines := []string{
		"Operator Bundle Details: " + orDefault(o.DisplayName(), "Unknown"),
		rule(60),
		"ID: " + o.ID,
	}
	for _, field := range []struct{ label, value string }{
		{"CSV Name", o.CSVName},
		{"Package", o.PackageName},
		{"Version", o.Version},
		{"Channel", o.ChannelName},
		{"Channels", strings.Join(o.Channels, ", ")},
		{"OCP Version", o.OCPVersion},
		{"Organization", o.Organization},
	} {
		if field.value != "" {
			lines = append(lines, field.label+": "+field.value)
		}
	}
	lines = append(lines, "Certified: "+yesNo(o.Certified))
	if o.Registry != "" && o.Repository != "" {
		lines = append(lines, fmt.Sprintf("Registry: %s/%s", o.Registry, o.Repository))
	}
	if o.BundlePath != "" {
		lines = append(lines, "Bundle Path: "+o.BundlePath)
	}
	if o.CreationDate.IsSet() {
		lines = append(lines, "Created: "+formatTime(o.CreationDate))
	}
	if o.LastUpdateDate.IsSet() {
		lines = append(lines, "Last Updated: "+formatTime(o.LastUpdateDate))
	}
	return strings.Join(lines, "\n")
}

func formatRepositoryDetails(r *pyxis.Repository) string {
	lines := []string{
		"Repository Details: " + r.FullName(),
		rule(60),
	}
	if r.ID != "" {
		lines = append(lines, "ID: "+r.ID)
	}
	lines = append(lines,
		"Registry: "+orDefault(r.Registry, "Unknown"),
		"Repository: "+orDefault(r.Repository, "Unknown"),
		"Published: "+yesNo(r.Published),
	)
	if r.VendorLabel != "" {
		lines = append(lines, "Vendor: "+r.VendorLabel)
	}
	if r.PushDate.IsSet() {
		lines = append(lines, "Last Push: "+formatTime(r.PushDate))
	}
	if len(r.ReleaseCategories) > 0 {
		lines = append(lines, "Release Categories: "+strings.Join(r.ReleaseCategories, ", "))
	}

	if names := tagNames(r.Tags); len(names) > 0 {
		lines = append(lines, "", fmt.Sprintf("Tags (%d):", len(names)))
		for _, n := range names[:min(len(names), maxRepositoryTags)] {
			lines = append(lines, "  • "+n)
		}
		if extra := len(names) - maxRepositoryTags; extra > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more tags", extra))
		}
	}

	if description := r.DisplayData.Description(); description != "" {
		lines = append(lines, "", "Description:", description)
	}
	return strings.Join(lines, "\n")
}
