package stack

import (
	"context"
	"fmt"
	"sort"

	"github.com/compose-spec/compose-go/v2/loader"
	compose "github.com/compose-spec/compose-go/v2/types"

	"github.com/RogueNAND/fleetcommandav/internal/system"
)

// AvailableProfiles parses the stack descriptor and returns the sorted
// set of profile names its services declare. Used as a best-effort hint
// for the profile prompt.
func AvailableProfiles(ctx context.Context, filesystem system.FileSystem, path string) ([]string, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stack descriptor: %w", err)
	}

	details := compose.ConfigDetails{
		ConfigFiles: []compose.ConfigFile{
			{Filename: path, Content: data},
		},
	}
	project, err := loader.LoadWithContext(ctx, details, func(o *loader.Options) {
		o.SetProjectName("fleetcommandav", true)
		o.SkipValidation = true
		// Load every service regardless of active profiles; the point
		// is to list what could be enabled.
		o.Profiles = []string{"*"}
	})
	if err != nil {
		return nil, fmt.Errorf("parse stack descriptor: %w", err)
	}

	seen := make(map[string]bool)
	for _, svc := range project.AllServices() {
		for _, p := range svc.Profiles {
			seen[p] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
