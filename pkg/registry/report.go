package registry

import "github.com/dkoosis/typekit/pkg/sarif"

// Level maps a rule severity onto a SARIF result level.
func (s Severity) Level() string {
	switch s {
	case SeverityCritical, SeverityHigh:
		return sarif.LevelError
	case SeverityMedium, SeverityLow:
		return sarif.LevelWarning
	default:
		return sarif.LevelNote
	}
}

// IssuesToSARIF converts validation issues to SARIF results for the catalog
// artifact at catalogURI.
func IssuesToSARIF(catalogURI string, issues []Issue) []sarif.Result {
	results := make([]sarif.Result, 0, len(issues))
	for _, issue := range issues {
		loc := sarif.Location{
			PhysicalLocation: &sarif.PhysicalLocation{
				ArtifactLocation: sarif.ArtifactLocation{URI: catalogURI},
			},
		}
		if issue.Subject != "" {
			loc.LogicalLocations = []sarif.LogicalLocation{{Name: issue.Subject, Kind: "type"}}
		}
		results = append(results, sarif.Result{
			RuleID:    string(issue.Code),
			Level:     sarif.LevelError,
			Message:   sarif.Message{Text: issue.Message},
			Locations: []sarif.Location{loc},
		})
	}
	return results
}

// RuleDescriptors publishes rules as SARIF reporting descriptors so a rule
// execution engine can reference them by id.
func RuleDescriptors(rules []Rule) []sarif.ReportingDescriptor {
	out := make([]sarif.ReportingDescriptor, 0, len(rules))
	for _, r := range rules {
		out = append(out, sarif.ReportingDescriptor{
			ID:                   r.ID,
			Name:                 r.Name,
			ShortDescription:     &sarif.Message{Text: r.Name},
			DefaultConfiguration: &sarif.Configuration{Level: r.Severity.Level()},
			Properties: map[string]any{
				"severity": string(r.Severity),
				"fixable":  r.Fixable,
				"tags":     r.Tags,
			},
		})
	}
	return out
}
