package auth

import (
	"context"
	"errors"
	"testing"
)

func TestRoleSetUnion(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   []string
	}{
		{
			name:   "both groupings empty",
			claims: Claims{},
			want:   []string{},
		},
		{
			name: "realm only",
			claims: Claims{
				RealmAccess: RoleGrouping{Roles: []string{"patient"}},
			},
			want: []string{"patient"},
		},
		{
			name: "client only",
			claims: Claims{
				ClientAccess: RoleGrouping{Roles: []string{"doctor"}},
			},
			want: []string{"doctor"},
		},
		{
			name: "both groupings merge",
			claims: Claims{
				RealmAccess:  RoleGrouping{Roles: []string{"patient"}},
				ClientAccess: RoleGrouping{Roles: []string{"admin"}},
			},
			want: []string{"patient", "admin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.claims.RoleSet()
			if len(got) != len(tt.want) {
				t.Fatalf("RoleSet() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("RoleSet()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// The derived role must not depend on which grouping carried which role.
func TestRoleSetGroupingOrderIrrelevant(t *testing.T) {
	a := Claims{
		RealmAccess:  RoleGrouping{Roles: []string{"admin"}},
		ClientAccess: RoleGrouping{Roles: []string{"patient"}},
	}
	b := Claims{
		RealmAccess:  RoleGrouping{Roles: []string{"patient"}},
		ClientAccess: RoleGrouping{Roles: []string{"admin"}},
	}

	if DeriveRole(a.RoleSet()) != DeriveRole(b.RoleSet()) {
		t.Errorf("derived role depends on grouping placement: %q vs %q",
			DeriveRole(a.RoleSet()), DeriveRole(b.RoleSet()))
	}
	if got := DeriveRole(a.RoleSet()); got != RoleAdmin {
		t.Errorf("DeriveRole = %q, want %q", got, RoleAdmin)
	}
}

func TestIdentityFromContext(t *testing.T) {
	ident := Identity{Subject: "kc-123", Role: RoleDoctor}
	ctx := WithIdentity(context.Background(), ident)

	got, err := IdentityFromContext(ctx)
	if err != nil {
		t.Fatalf("IdentityFromContext: %v", err)
	}
	if got.Subject != "kc-123" || got.Role != RoleDoctor {
		t.Errorf("IdentityFromContext = %+v, want %+v", got, ident)
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	_, err := IdentityFromContext(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestIdentityFromContextEmptySubject(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{Role: RoleAdmin})
	_, err := IdentityFromContext(ctx)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}
