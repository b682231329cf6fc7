package jobinfra

import (
	"encoding/json"
	"testing"

	"github.com/lib/pq"
)

func TestJobModelToEntity(t *testing.T) {
	m := &jobModel{
		ID:              "job-1",
		Title:           "Backend Engineer",
		Requirements:    json.RawMessage(`["Go","PostgreSQL"]`),
		ExperienceLevel: "Senior",
		CompanyName:     "Acme",
		SkillNames:      pq.StringArray{"docker", "go"},
	}

	j, err := m.toEntity()
	if err != nil {
		t.Fatalf("toEntity: %v", err)
	}
	if j.ID != "job-1" || j.Title != "Backend Engineer" || j.CompanyName != "Acme" {
		t.Errorf("unexpected job: %+v", j)
	}
	if len(j.Requirements) != 2 || j.Requirements[1] != "PostgreSQL" {
		t.Errorf("requirements = %v", j.Requirements)
	}
	if len(j.SkillNames) != 2 {
		t.Errorf("skills = %v", j.SkillNames)
	}
}

func TestJobModelToEntityEmptyColumns(t *testing.T) {
	m := &jobModel{ID: "job-2", Title: "Designer"}

	j, err := m.toEntity()
	if err != nil {
		t.Fatalf("toEntity: %v", err)
	}
	if j.SkillNames == nil {
		t.Error("skill names should be an empty slice, not nil")
	}
	if len(j.Requirements) != 0 {
		t.Errorf("requirements = %v", j.Requirements)
	}
}

func TestJobModelToEntityBadRequirements(t *testing.T) {
	m := &jobModel{ID: "job-3", Requirements: json.RawMessage(`{"not":"a list"}`)}

	if _, err := m.toEntity(); err == nil {
		t.Fatal("expected an error for malformed requirements")
	}
}
