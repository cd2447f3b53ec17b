// Package resolve is the resolver core (component C6): it builds a
// dependency DAG over a unified candidate universe, detects cycles,
// reports conflicts/missing dependencies, and produces a deterministic
// topological install order. One Driver holds a small per-family
// FamilyAdapter capability pack instead of a class hierarchy, per the
// design guidance in the specification this package implements.
package resolve

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/depssmuggler/core/internal/ospkg"
	"github.com/depssmuggler/core/internal/versionalg"
)

// MissingReason classifies why a dependency could not be satisfied.
type MissingReason string

const (
	ReasonNotFound             MissingReason = "not_found"
	ReasonVersionMismatch      MissingReason = "version_mismatch"
	ReasonArchitectureMismatch MissingReason = "architecture_mismatch"
)

// Unresolved records one dependency the resolver could not satisfy.
type Unresolved struct {
	Package ospkg.Key
	Dep     ospkg.Dependency
	Reason  MissingReason
}

// Conflict records a capability with two or more distinct candidate
// versions still live after filtering.
type Conflict struct {
	Name     string
	Versions []string
}

// Result is the resolver's output.
type Result struct {
	Packages   []ospkg.Package // topological install order
	Unresolved []Unresolved
	Conflicts  []Conflict
	Warnings   []string
}

// Options tunes the resolve per spec's includeOptional/includeRecommends
// configuration knobs.
type Options struct {
	IncludeOptional    bool // follow suggests (all families)
	IncludeRecommends  bool // follow APT recommends specifically
	MaxDepthWarning    int  // default 10
}

// FamilyAdapter is the small per-family capability pack the Driver
// dispatches to, in place of a BaseOSDependencyResolver class hierarchy.
type FamilyAdapter struct {
	// FetchDepsFromMetadata optionally overrides a package's
	// Dependencies with a family API-path result. Current families
	// always return (nil, false) and fall back to metadata.
	FetchDepsFromMetadata func(pkg ospkg.Package) ([]ospkg.Dependency, bool)

	// ExtraCandidateNames returns additional capability names to try
	// looking up for a dependency, beyond its literal Name (APK's
	// so:/cmd: prefix tries, YUM's "(...)" suffix stripping, APT's
	// ":arch" suffix stripping).
	ExtraCandidateNames func(depName string) []string

	Compare          versionalg.Comparator
	CanonicaliseArch func(a ospkg.Architecture) ospkg.Architecture
}

// DefaultAdapter returns the FamilyAdapter for pm, built on
// internal/versionalg and internal/ospkg.
func DefaultAdapter(pm ospkg.PackageManager) FamilyAdapter {
	a := FamilyAdapter{
		Compare: versionalg.ForFamily(pm),
		CanonicaliseArch: func(arch ospkg.Architecture) ospkg.Architecture {
			return ospkg.CanonicalForFamily(arch, pm)
		},
	}
	switch pm {
	case ospkg.PackageManagerAPK:
		a.ExtraCandidateNames = func(name string) []string {
			return []string{"so:" + name, "cmd:" + name}
		}
	case ospkg.PackageManagerYUM:
		a.ExtraCandidateNames = func(name string) []string {
			if i := strings.IndexByte(name, '('); i >= 0 {
				return []string{name[:i]}
			}
			return nil
		}
	case ospkg.PackageManagerAPT:
		a.ExtraCandidateNames = func(name string) []string {
			if i := strings.IndexByte(name, ':'); i >= 0 {
				return []string{name[:i]}
			}
			return nil
		}
	}
	return a
}

// Driver resolves a requested package set against a candidate universe
// for one family. It is constructed fresh per resolve call: its mutable
// DAG/visited-set/conflict-map state is never shared across calls or
// goroutines (component C6 is single-threaded per resolve).
type Driver struct {
	adapter    FamilyAdapter
	targetArch ospkg.Architecture
	opts       Options

	byName    map[string][]ospkg.Package
	provides  map[string][]ospkg.Package

	visited        map[ospkg.Key]bool
	onStack        map[ospkg.Key]bool
	nodes          map[ospkg.Key]ospkg.Package
	edges          map[ospkg.Key][]ospkg.Key   // source -> best-match targets
	conflicts      map[string][]string         // capability -> distinct versions
	extra          map[ospkg.Key]ospkg.Package // packages pulled in only via conflict (not a graph edge)
	insertionOrder []ospkg.Key                 // node keys in first-visited order, for deterministic topo sort

	unresolved []Unresolved
	warnings   []string
}

// New constructs a Driver over the given candidate universe for one
// target architecture.
func New(adapter FamilyAdapter, targetArch ospkg.Architecture, candidates []ospkg.Package, opts Options) *Driver {
	if opts.MaxDepthWarning == 0 {
		opts.MaxDepthWarning = 10
	}

	d := &Driver{
		adapter:    adapter,
		targetArch: targetArch,
		opts:       opts,
		byName:     make(map[string][]ospkg.Package),
		provides:   make(map[string][]ospkg.Package),
		visited:    make(map[ospkg.Key]bool),
		onStack:    make(map[ospkg.Key]bool),
		nodes:      make(map[ospkg.Key]ospkg.Package),
		edges:      make(map[ospkg.Key][]ospkg.Key),
		conflicts:  make(map[string][]string),
		extra:      make(map[ospkg.Key]ospkg.Package),
	}

	for _, p := range candidates {
		d.byName[p.Name] = append(d.byName[p.Name], p)
		for _, capability := range p.Capabilities() {
			d.provides[capability] = append(d.provides[capability], p)
		}
		if d.adapter.ExtraCandidateNames != nil {
			for _, extra := range d.adapter.ExtraCandidateNames(p.Name) {
				d.provides[extra] = append(d.provides[extra], p)
			}
		}
	}

	return d
}

// Resolve walks the transitive closure of requested (by name) and
// produces a Result with a topological install order.
func (d *Driver) Resolve(requested []string) Result {
	for _, name := range requested {
		for _, p := range d.byName[name] {
			d.visit(p, 0)
		}
	}

	order := d.topoSort()

	var pkgs []ospkg.Package
	for _, k := range order {
		pkgs = append(pkgs, d.nodes[k])
	}
	// Include conflict-only extra versions (spec: "all distinct versions
	// are retained for download" even though only one wins the graph edge).
	extraKeys := make([]ospkg.Key, 0, len(d.extra))
	for k := range d.extra {
		if !d.visited[k] {
			extraKeys = append(extraKeys, k)
		}
	}
	sort.Slice(extraKeys, func(i, j int) bool { return fmt.Sprint(extraKeys[i]) < fmt.Sprint(extraKeys[j]) })
	for _, k := range extraKeys {
		pkgs = append(pkgs, d.extra[k])
	}

	var conflicts []Conflict
	for name, versions := range d.conflicts {
		conflicts = append(conflicts, Conflict{Name: name, Versions: versions})
	}

	return Result{
		Packages:   pkgs,
		Unresolved: d.unresolved,
		Conflicts:  conflicts,
		Warnings:   d.warnings,
	}
}

func (d *Driver) visit(pkg ospkg.Package, depth int) {
	key := pkg.Key()
	if d.visited[key] {
		return
	}
	d.visited[key] = true
	d.onStack[key] = true
	d.nodes[key] = pkg
	d.insertionOrder = append(d.insertionOrder, key)

	if depth > d.opts.MaxDepthWarning {
		d.warnings = append(d.warnings, "dependency depth exceeds "+strconv.Itoa(d.opts.MaxDepthWarning)+" at package "+pkg.Name)
	}

	deps := pkg.Dependencies
	if d.adapter.FetchDepsFromMetadata != nil {
		if override, ok := d.adapter.FetchDepsFromMetadata(pkg); ok {
			deps = override
		}
	}

	for _, dep := range deps {
		if dep.IsOptional && !d.opts.IncludeOptional {
			continue
		}
		if dep.IsRecommend && !d.opts.IncludeRecommends {
			continue
		}
		d.resolveDep(pkg, dep, depth)
	}

	delete(d.onStack, key)
}

func (d *Driver) resolveDep(from ospkg.Package, dep ospkg.Dependency, depth int) {
	candidates := d.lookupCandidates(dep.Name)
	if len(candidates) == 0 {
		d.unresolved = append(d.unresolved, Unresolved{Package: from.Key(), Dep: dep, Reason: ReasonNotFound})
		return
	}

	if dep.Version != "" && dep.Operator != "" {
		filtered := candidates[:0:0]
		for _, c := range candidates {
			if d.adapter.Compare.Matches(c.Version, dep.Operator, dep.Version) {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}
	if len(candidates) == 0 {
		d.unresolved = append(d.unresolved, Unresolved{Package: from.Key(), Dep: dep, Reason: ReasonVersionMismatch})
		return
	}

	archFiltered := candidates[:0:0]
	for _, c := range candidates {
		if ospkg.Compatible(c.Architecture, d.targetArch) {
			archFiltered = append(archFiltered, c)
		}
	}
	candidates = archFiltered
	if len(candidates) == 0 {
		d.unresolved = append(d.unresolved, Unresolved{Package: from.Key(), Dep: dep, Reason: ReasonArchitectureMismatch})
		return
	}

	distinct := distinctVersions(candidates)
	if len(distinct) >= 2 {
		d.conflicts[dep.Name] = distinct
		for _, c := range candidates {
			d.extra[c.Key()] = c
		}
	}

	best := d.bestMatch(candidates)

	if d.onStack[best.Key()] {
		// Back-edge: cycle. Log and drop, but keep both nodes.
		d.warnings = append(d.warnings, "cycle detected: "+from.Name+" -> "+best.Name)
		return
	}
	d.edges[from.Key()] = append(d.edges[from.Key()], best.Key())
	d.visit(best, depth+1)
}

// lookupCandidates merges name-indexed and provides-indexed candidates
// for a dependency name (spec: "first by name in packages; merge in
// provides[dep.name]"), then does the same for each of the adapter's
// ExtraCandidateNames(name).
func (d *Driver) lookupCandidates(name string) []ospkg.Package {
	seen := make(map[ospkg.Key]bool)
	var out []ospkg.Package

	add := func(pkgs []ospkg.Package) {
		for _, p := range pkgs {
			k := p.Key()
			if !seen[k] {
				seen[k] = true
				out = append(out, p)
			}
		}
	}

	add(d.byName[name])
	add(d.provides[name])
	if d.adapter.ExtraCandidateNames != nil {
		for _, extra := range d.adapter.ExtraCandidateNames(name) {
			add(d.byName[extra])
			add(d.provides[extra])
		}
	}
	return out
}

// bestMatch picks the highest version under the family's order, ties
// broken by (a) higher repository priority i.e. lower Package.RepoPriority,
// (b) official before unofficial, (c) first-indexed. Callers populate
// RepoPriority/RepoOfficial from the owning catalog.Repository before
// constructing the Driver (cmd/depssmuggler's loadCandidates does this);
// candidates that never set them all compare equal on (a)/(b) and fall
// through to (c).
func (d *Driver) bestMatch(candidates []ospkg.Package) ospkg.Package {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if d.adapter.Compare.Compare(c.Version, best.Version) > 0 {
			best = c
			continue
		}
		if d.adapter.Compare.Compare(c.Version, best.Version) == 0 && higherPriorityRepo(c, best) {
			best = c
		}
	}
	return best
}

// higherPriorityRepo reports whether c's owning repository should win a
// same-version tie against best's: lower RepoPriority wins, then official
// over unofficial.
func higherPriorityRepo(c, best ospkg.Package) bool {
	if c.RepoPriority != best.RepoPriority {
		return c.RepoPriority < best.RepoPriority
	}
	return c.RepoOfficial && !best.RepoOfficial
}

func distinctVersions(pkgs []ospkg.Package) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range pkgs {
		key := p.Version
		if p.Release != "" {
			key += "-" + p.Release
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

// topoSort performs a depth-first post-order traversal over the edges
// recorded during visit, which is a valid topological order because every
// edge source was visited (and thus had its dependencies resolved) before
// being appended to the order. Cycle back-edges were already dropped from
// d.edges at resolveDep time.
func (d *Driver) topoSort() []ospkg.Key {
	var order []ospkg.Key
	seen := make(map[ospkg.Key]bool)

	var visit func(k ospkg.Key)
	visit = func(k ospkg.Key) {
		if seen[k] {
			return
		}
		seen[k] = true
		for _, t := range d.edges[k] {
			visit(t)
		}
		order = append(order, k)
	}

	// Iterate nodes in visited order for determinism across runs given
	// the same requested-name order and candidate universe.
	for _, k := range d.visitOrder() {
		visit(k)
	}
	return order
}

// visitOrder returns node keys in the order visit() first touched them,
// recorded implicitly by nodes map insertion — Go map iteration is
// randomized, so we additionally track insertion via a slice.
func (d *Driver) visitOrder() []ospkg.Key {
	return d.insertionOrder
}
