package grouppolicy_test

import (
	"testing"

	"github.com/dalemusser/stratagroups/internal/app/policy/grouppolicy"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/stratagroups/internal/domain/models"
)

func TestPolicies(t *testing.T) {
	owner := models.NewUser("owner@example.com", "Owner")
	member := models.NewUser("member@example.com", "Member")
	outsider := models.NewUser("out@example.com", "Outsider")

	g := models.NewGroup(owner, "Team")
	if err := g.AssignGroupMembership(owner, member); err != nil {
		t.Fatalf("AssignGroupMembership: %v", err)
	}

	su := func(u *models.User, super bool) *auth.SessionUser {
		return &auth.SessionUser{ID: u.ID().Hex(), Name: u.Name(), Email: u.Email(), IsSupervisor: super}
	}

	tests := []struct {
		name       string
		user       *auth.SessionUser
		wantView   bool
		wantRename bool
	}{
		{"owner", su(owner, false), true, true},
		{"member", su(member, false), true, false},
		{"outsider", su(outsider, false), false, false},
		{"supervisor outsider", su(outsider, true), true, false},
		{"anonymous", nil, false, false},
		{"malformed id", &auth.SessionUser{ID: "nope"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grouppolicy.CanView(g, tt.user); got != tt.wantView {
				t.Errorf("CanView: got %v, want %v", got, tt.wantView)
			}
			if got := grouppolicy.CanRename(g, tt.user); got != tt.wantRename {
				t.Errorf("CanRename: got %v, want %v", got, tt.wantRename)
			}
		})
	}
}
