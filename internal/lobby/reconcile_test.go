package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDidMembersChange(t *testing.T) {
	tests := []struct {
		name string
		old  []Member
		new  []Member
		want bool
	}{
		{
			name: "identical single member",
			old:  []Member{{ID: "a", IsReady: false}},
			new:  []Member{{ID: "a", IsReady: false}},
			want: false,
		},
		{
			name: "ready flag flipped",
			old:  []Member{{ID: "a", IsReady: false}},
			new:  []Member{{ID: "a", IsReady: true}},
			want: true,
		},
		{
			name: "member joined",
			old:  []Member{{ID: "a"}},
			new:  []Member{{ID: "a"}, {ID: "b"}},
			want: true,
		},
		{
			name: "member left",
			old:  []Member{{ID: "a"}, {ID: "b"}},
			new:  []Member{{ID: "b"}},
			want: true,
		},
		{
			name: "same members reordered reads as change",
			old:  []Member{{ID: "a"}, {ID: "b"}},
			new:  []Member{{ID: "b"}, {ID: "a"}},
			want: true,
		},
		{
			name: "display name change alone is not a change",
			old:  []Member{{ID: "a", DisplayName: "Ann"}},
			new:  []Member{{ID: "a", DisplayName: "Anne"}},
			want: false,
		},
		{
			name: "both empty",
			old:  nil,
			new:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DidMembersChange(tt.old, tt.new))
		})
	}
}

func TestIsGameReady(t *testing.T) {
	tests := []struct {
		name    string
		members []Member
		want    bool
	}{
		{
			name:    "single ready member is never ready",
			members: []Member{{ID: "a", IsReady: true}},
			want:    false,
		},
		{
			name:    "two members both ready",
			members: []Member{{ID: "a", IsReady: true}, {ID: "b", IsReady: true}},
			want:    true,
		},
		{
			name:    "two members one not ready",
			members: []Member{{ID: "a", IsReady: true}, {ID: "b", IsReady: false}},
			want:    false,
		},
		{
			name:    "empty lobby",
			members: nil,
			want:    false,
		},
		{
			name: "four members all ready",
			members: []Member{
				{ID: "a", IsReady: true}, {ID: "b", IsReady: true},
				{ID: "c", IsReady: true}, {ID: "d", IsReady: true},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGameReady(tt.members))
		})
	}
}

func TestCheckNameUnique(t *testing.T) {
	// The caller has already joined, so their own name is always present once.
	members := []Member{
		{ID: "host", DisplayName: "Ann"},
		{ID: "self", DisplayName: "Bob"},
	}

	assert.True(t, CheckNameUnique("Bob", members), "one match (self) means unique")

	dup := append(CloneMembers(members), Member{ID: "third", DisplayName: "Bob"})
	assert.False(t, CheckNameUnique("Bob", dup), "two matches mean duplicate")
}

func TestContainsMember(t *testing.T) {
	members := []Member{{ID: "a"}, {ID: "b"}}
	assert.True(t, ContainsMember(members, "b"))
	assert.False(t, ContainsMember(members, "c"))
}
