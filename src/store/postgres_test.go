package store

import (
	"strings"
	"testing"

	"versioning-backend/src/contracts"
)

func TestBuildUpdate(t *testing.T) {
	tests := []struct {
		name        string
		mutation    Mutation
		wantContain []string
		wantAbsent  []string
		wantArgs    int
	}{
		{
			name: "mark failed",
			mutation: Mutation{
				Status:            contracts.StatusFailed,
				Failure:           &contracts.BuildFailure{Reason: "compile error"},
				IncrementFailures: true,
				StampLastFailure:  true,
			},
			wantContain: []string{
				"modified_date = NOW()",
				"status = $2",
				"failure = $3",
				"failure_count = failure_count + 1",
				"last_build_failure = NOW()",
				"WHERE build_id = $1",
			},
			wantAbsent: []string{"published_date = NOW()", "docker_info = "},
			wantArgs:   3,
		},
		{
			name: "mark published with guard",
			mutation: Mutation{
				Status:         contracts.StatusPublished,
				DockerInfo:     &contracts.DockerInfo{Hash: "abc123"},
				StampPublished: true,
				RejectTerminal: true,
			},
			wantContain: []string{
				"status = $2",
				"docker_info = $3",
				"published_date = NOW()",
				"AND status <> $4",
			},
			wantAbsent: []string{"failure_count = failure_count + 1"},
			wantArgs:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildUpdate("build-1", tt.mutation)
			if err != nil {
				t.Fatalf("buildUpdate() error = %v", err)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(query, want) {
					t.Errorf("query missing %q:\n%s", want, query)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(query, absent) {
					t.Errorf("query should not contain %q:\n%s", absent, query)
				}
			}
			if len(args) != tt.wantArgs {
				t.Errorf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
			if args[0] != "build-1" {
				t.Errorf("args[0] = %v, want build-1", args[0])
			}
			if !strings.Contains(query, "RETURNING") {
				t.Error("query should return the updated row")
			}
		})
	}
}

func TestNullableJSON(t *testing.T) {
	value, err := nullableJSON[contracts.BuildFailure](nil)
	if err != nil || value != nil {
		t.Fatalf("nullableJSON(nil) = %v, %v; want nil, nil", value, err)
	}

	value, err = nullableJSON(&contracts.BuildFailure{Reason: "oom"})
	if err != nil {
		t.Fatalf("nullableJSON() error = %v", err)
	}
	if value != `{"reason":"oom"}` {
		t.Errorf("nullableJSON() = %v", value)
	}
}
