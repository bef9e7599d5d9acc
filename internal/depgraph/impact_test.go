package depgraph

import (
	"testing"

	"spat/internal/manifest"
)

// Chain fixture from the tracker's bread-and-butter scenario: A depends on
// B, B depends on C, C ships no manifest.
func buildChain(t *testing.T) *Graph {
	t.Helper()
	b := testBuilder()
	return b.Build([]PackageInput{
		{ID: pid("org", "a"), Manifest: `Package(dependencies: [.package(url: "https://github.com/org/b", from: "1.0.0")])`, Meta: Metadata{HasManifest: true, LinuxCompatible: true}},
		{ID: pid("org", "b"), Manifest: `Package(dependencies: [.package(url: "https://github.com/org/c", branch: "main")])`, Meta: Metadata{HasManifest: true, LinuxCompatible: true}},
		{ID: pid("org", "c"), Meta: Metadata{Stars: 900, LinuxCompatible: true}},
	})
}

func TestImpactEndToEnd(t *testing.T) {
	g := buildChain(t)

	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("EdgeCount() = %d, want 2", g.EdgeCount())
	}

	analyzer := NewAnalyzer(g, testLogger())
	rec, ok := analyzer.Record(pid("org", "c"))
	if !ok {
		t.Fatal("org/c should have an impact record")
	}
	if rec.DirectDependents != 1 {
		t.Errorf("DirectDependents = %d, want 1", rec.DirectDependents)
	}
	if rec.IndirectImpact != 1 {
		t.Errorf("IndirectImpact = %d, want 1 (A through B)", rec.IndirectImpact)
	}
	if rec.TotalImpact != 2 {
		t.Errorf("TotalImpact = %d, want 2", rec.TotalImpact)
	}
	if rec.Stars != 900 {
		t.Errorf("Stars = %d, want echoed metadata", rec.Stars)
	}
	if rec.HasManifest {
		t.Error("HasManifest should be false for org/c")
	}

	edgeToC := g.Dependencies(pid("org", "b"))
	if len(edgeToC) != 1 || edgeToC[0].Constraint != "main" {
		t.Errorf("edge B→C constraint = %v, want branch main", edgeToC)
	}
}

func TestIndirectImpactDiamond(t *testing.T) {
	g := NewGraph()
	for _, repo := range []string{"a", "b", "c", "d"} {
		g.AddPackage(pid("org", repo), repo, &Metadata{}, nil)
	}
	// a -> b -> d and a -> c -> d
	g.AddEdge(pid("org", "a"), pid("org", "b"), manifest.KindRuntime, "")
	g.AddEdge(pid("org", "b"), pid("org", "d"), manifest.KindRuntime, "")
	g.AddEdge(pid("org", "a"), pid("org", "c"), manifest.KindRuntime, "")
	g.AddEdge(pid("org", "c"), pid("org", "d"), manifest.KindRuntime, "")
	g.computeDepths()

	analyzer := NewAnalyzer(g, testLogger())
	rec, _ := analyzer.Record(pid("org", "d"))

	if rec.DirectDependents != 2 {
		t.Errorf("DirectDependents = %d, want 2", rec.DirectDependents)
	}
	// A reaches d along two distinct paths and counts once per path.
	if rec.IndirectImpact != 2 {
		t.Errorf("IndirectImpact = %d, want 2", rec.IndirectImpact)
	}
	if rec.TotalImpact != 4 {
		t.Errorf("TotalImpact = %d, want 4", rec.TotalImpact)
	}
}

func TestIndirectImpactCycleTerminates(t *testing.T) {
	g := NewGraph()
	g.AddPackage(pid("org", "a"), "a", &Metadata{}, nil)
	g.AddPackage(pid("org", "b"), "b", &Metadata{}, nil)
	g.AddEdge(pid("org", "a"), pid("org", "b"), manifest.KindRuntime, "")
	g.AddEdge(pid("org", "b"), pid("org", "a"), manifest.KindRuntime, "")
	g.computeDepths()

	analyzer := NewAnalyzer(g, testLogger())
	for _, repo := range []string{"a", "b"} {
		rec, _ := analyzer.Record(pid("org", repo))
		if rec.DirectDependents != 1 {
			t.Errorf("DirectDependents(org/%s) = %d, want 1", repo, rec.DirectDependents)
		}
		if rec.IndirectImpact != 0 {
			t.Errorf("IndirectImpact(org/%s) = %d, want 0 (cycle contributes nothing)", repo, rec.IndirectImpact)
		}
	}
}

func TestAnalyzeSortsByTotalImpactDescending(t *testing.T) {
	g := NewGraph()
	// hub has two dependents, lone has none, tied1/tied2 have one each.
	for _, repo := range []string{"tied1", "tied2", "hub", "lone", "u1", "u2"} {
		g.AddPackage(pid("org", repo), repo, &Metadata{}, nil)
	}
	g.AddEdge(pid("org", "u1"), pid("org", "hub"), manifest.KindRuntime, "")
	g.AddEdge(pid("org", "u2"), pid("org", "hub"), manifest.KindRuntime, "")
	g.AddEdge(pid("org", "u1"), pid("org", "tied1"), manifest.KindRuntime, "")
	g.AddEdge(pid("org", "u2"), pid("org", "tied2"), manifest.KindRuntime, "")
	g.computeDepths()

	analysis := NewAnalyzer(g, testLogger()).Analyze()

	if len(analysis.Records) != 6 {
		t.Fatalf("len(Records) = %d, want 6", len(analysis.Records))
	}
	if analysis.Records[0].Name != "hub" {
		t.Errorf("Records[0] = %s, want hub first", analysis.Records[0].Name)
	}
	// tied1 and tied2 both have totalImpact 1; insertion order breaks the tie.
	if analysis.Records[1].Name != "tied1" || analysis.Records[2].Name != "tied2" {
		t.Errorf("tie order = %s, %s; want tied1 then tied2 (insertion order)",
			analysis.Records[1].Name, analysis.Records[2].Name)
	}
	for i := 1; i < len(analysis.Records); i++ {
		if analysis.Records[i].TotalImpact > analysis.Records[i-1].TotalImpact {
			t.Errorf("records not descending at %d", i)
		}
	}
}

func TestAnalyzeSummaryThresholds(t *testing.T) {
	g := NewGraph()
	g.AddPackage(pid("org", "base"), "base", &Metadata{}, nil)
	// 11 direct dependents: foundational (>10) and high impact (>5).
	for i := 0; i < 11; i++ {
		dep := pid("org", string(rune('a'+i)))
		g.AddPackage(dep, dep.Repo, &Metadata{}, nil)
		g.AddEdge(dep, pid("org", "base"), manifest.KindRuntime, "")
	}
	g.computeDepths()

	analysis := NewAnalyzer(g, testLogger()).Analyze()

	if analysis.Summary.TotalPackages != 12 {
		t.Errorf("TotalPackages = %d, want 12", analysis.Summary.TotalPackages)
	}
	if analysis.Summary.HighImpactPackages != 1 {
		t.Errorf("HighImpactPackages = %d, want 1", analysis.Summary.HighImpactPackages)
	}
	if analysis.Summary.FoundationalPackages != 1 {
		t.Errorf("FoundationalPackages = %d, want 1", analysis.Summary.FoundationalPackages)
	}
}

func TestAnalyzeIncludesExternalNodes(t *testing.T) {
	b := testBuilder()
	g := b.Build([]PackageInput{
		{ID: pid("org", "a"), Manifest: `Package(dependencies: [.package(url: "https://github.com/ext/lib", from: "1.0.0")])`, Meta: Metadata{Stars: 5}},
	})

	analysis := NewAnalyzer(g, testLogger()).Analyze()
	if len(analysis.Records) != 2 {
		t.Fatalf("len(Records) = %d, want known + external", len(analysis.Records))
	}

	var ext *ImpactRecord
	for i := range analysis.Records {
		if analysis.Records[i].External {
			ext = &analysis.Records[i]
		}
	}
	if ext == nil {
		t.Fatal("external node should produce a record")
	}
	if ext.PackageID != "ext/lib" {
		t.Errorf("external PackageID = %q, want ext/lib", ext.PackageID)
	}
	if ext.Stars != 0 || ext.HasManifest {
		t.Error("external record should default missing metadata to zero values")
	}
	if ext.DirectDependents != 1 {
		t.Errorf("external DirectDependents = %d, want 1", ext.DirectDependents)
	}
}

func TestRecordMissingPackage(t *testing.T) {
	g := buildChain(t)
	analyzer := NewAnalyzer(g, testLogger())

	if _, ok := analyzer.Record(pid("org", "never-built")); ok {
		t.Error("Record for an absent package should report ok = false, not an error")
	}
}
