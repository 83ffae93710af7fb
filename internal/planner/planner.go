package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"worktoolkit/internal/feature"
	"worktoolkit/internal/fileutil"
	"worktoolkit/internal/services"
	"worktoolkit/internal/textutil"
)

// Source is a discovered input document.
type Source struct {
	Path string // absolute path
	Stem string // base name without extension
}

// Group is one feature group with its planned output name. Sources are
// sorted ascending by path so merge order is deterministic regardless of
// discovery or scheduling order.
type Group struct {
	Key        string
	OutputName string
	Sources    []string
}

// Plan is the reviewable outcome of the discovery stage. Nothing is written
// until an operator confirms it.
type Plan struct {
	OutDir  string
	Groups  []Group // sorted by key
	Skipped int
}

// OutputNames returns the planned output filenames in key order.
func (p *Plan) OutputNames() []string {
	names := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		names = append(names, g.OutputName)
	}
	return names
}

// TotalSources counts the documents assigned to any group.
func (p *Plan) TotalSources() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Sources)
	}
	return n
}

// Discover lists the PDF documents in dir (non-recursive). It fails with a
// precondition error when dir is not a directory or contains no documents.
func Discover(dir string) ([]Source, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "planner", "discover", fmt.Sprintf("target %q is not a directory", dir), err)
	}
	paths, err := fileutil.ListPDFs(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "planner", "discover", "", err)
	}
	if len(paths) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "planner", "discover", fmt.Sprintf("no PDF documents in %q", dir), nil)
	}
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, Source{Path: p, Stem: fileutil.Stem(p)})
	}
	return sources, nil
}

// Build groups the sources by feature key and produces the unification plan.
// Sources whose basis cannot cover the configured range are counted as
// skipped and excluded from every group. The optional progress callback is
// invoked once per source. Two distinct keys sanitizing to the same output
// name fail the plan: letting them through would make one group silently
// overwrite the other.
func Build(sources []Source, cfg feature.Config, outDir string, progress func(done, total int)) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "planner", "build", "", err)
	}

	groups := make(map[string][]string)
	skipped := 0
	for i, src := range sources {
		key, err := cfg.Extract(src.Stem)
		if err != nil {
			skipped++
		} else {
			groups[key] = append(groups[key], src.Path)
		}
		if progress != nil {
			progress(i+1, len(sources))
		}
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	byName := make(map[string][]string)
	plan := &Plan{OutDir: outDir, Skipped: skipped, Groups: make([]Group, 0, len(keys))}
	for _, key := range keys {
		name := textutil.SanitizeFeature(key) + ".pdf"
		byName[name] = append(byName[name], key)
		paths := groups[key]
		fileutil.SortPathsFold(paths)
		plan.Groups = append(plan.Groups, Group{Key: key, OutputName: name, Sources: paths})
	}

	for name, owners := range byName {
		if len(owners) > 1 {
			return nil, services.Wrap(services.ErrValidation, "planner", "build",
				fmt.Sprintf("output name %q is claimed by distinct feature keys %s; adjust the range or filters", name, strings.Join(owners, ", ")), nil)
		}
	}

	return plan, nil
}

// DestPath returns the output path for a group within the plan's directory.
func (p *Plan) DestPath(g Group) string {
	return filepath.Join(p.OutDir, g.OutputName)
}
