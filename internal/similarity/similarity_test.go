package similarity

import (
	"fmt"
	"math"
	"testing"

	"projectlens/internal/models"
	"projectlens/pkg/logger"
)

func testEngine() *Engine {
	return New(logger.NewDefault("test"))
}

func TestAttachRanksByTextOverlap(t *testing.T) {
	projects := []*models.Project{
		{Name: "Alpha", Description: "database storage engine"},
		{Name: "Beta", Description: "storage engine for databases"},
		{Name: "Gamma", Description: "web framework for user interfaces"},
	}

	testEngine().Attach(projects, 5)

	for _, p := range projects {
		if len(p.SimilarProjects) != 2 {
			t.Fatalf("%s has %d neighbors, want 2", p.Name, len(p.SimilarProjects))
		}
	}

	if got := projects[0].SimilarProjects[0].Name; got != "Beta" {
		t.Errorf("Alpha nearest neighbor = %s, want Beta", got)
	}
	if got := projects[1].SimilarProjects[0].Name; got != "Alpha" {
		t.Errorf("Beta nearest neighbor = %s, want Alpha", got)
	}

	best := projects[0].SimilarProjects[0].Score
	worst := projects[0].SimilarProjects[1].Score
	if best <= worst {
		t.Errorf("neighbor scores not descending: %f then %f", best, worst)
	}
}

func TestAttachExcludesSelf(t *testing.T) {
	projects := []*models.Project{
		{Name: "Alpha", Description: "stream processing"},
		{Name: "Beta", Description: "stream processing"},
	}

	testEngine().Attach(projects, 5)

	for _, p := range projects {
		for _, n := range p.SimilarProjects {
			if n.Name == p.Name {
				t.Errorf("%s lists itself as a neighbor", p.Name)
			}
		}
	}
}

func TestAttachSymmetry(t *testing.T) {
	projects := []*models.Project{
		{Name: "Alpha", Description: "distributed message broker"},
		{Name: "Beta", Description: "distributed log broker"},
	}

	testEngine().Attach(projects, 5)

	a := projects[0].SimilarProjects[0].Score
	b := projects[1].SimilarProjects[0].Score
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("pairwise scores differ: %f vs %f", a, b)
	}
	if a <= 0 || a > 1+1e-12 {
		t.Errorf("score %f outside (0, 1]", a)
	}
}

func TestAttachTopNBound(t *testing.T) {
	var projects []*models.Project
	for i := 0; i < 10; i++ {
		projects = append(projects, &models.Project{
			Name:        fmt.Sprintf("P%d", i),
			Description: "shared vocabulary for every record",
		})
	}

	testEngine().Attach(projects, 5)

	for _, p := range projects {
		if len(p.SimilarProjects) != 5 {
			t.Errorf("%s has %d neighbors, want 5", p.Name, len(p.SimilarProjects))
		}
	}
}

func TestAttachSingleProjectNoOp(t *testing.T) {
	projects := []*models.Project{{Name: "Alpha", Description: "lonely"}}
	testEngine().Attach(projects, 5)
	if projects[0].SimilarProjects != nil {
		t.Errorf("single project got neighbors: %v", projects[0].SimilarProjects)
	}
}

func TestTokenizeDropsStopwords(t *testing.T) {
	got := testEngine().tokenize("The engine is a Storage-Layer for the data")
	want := []string{"engine", "storage", "layer", "data"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCosineIdenticalDocs(t *testing.T) {
	docs := [][]string{
		{"storage", "engine"},
		{"storage", "engine"},
	}
	vecs := vectorize(docs)
	if got := cosine(vecs[0], vecs[1]); math.Abs(got-1) > 1e-12 {
		t.Errorf("cosine of identical docs = %f, want 1", got)
	}
}

func TestCosineDisjointDocs(t *testing.T) {
	docs := [][]string{
		{"storage", "engine"},
		{"web", "framework"},
	}
	vecs := vectorize(docs)
	if got := cosine(vecs[0], vecs[1]); got != 0 {
		t.Errorf("cosine of disjoint docs = %f, want 0", got)
	}
}
