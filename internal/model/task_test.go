package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidStatusAndPriority(t *testing.T) {
	for _, s := range []string{StatusTodo, StatusInProgress, StatusCompleted} {
		require.True(t, ValidStatus(s), s)
	}
	require.False(t, ValidStatus(""))
	require.False(t, ValidStatus("done"))

	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh} {
		require.True(t, ValidPriority(p), p)
	}
	require.False(t, ValidPriority("urgent"))
}

func TestTaskPopulate(t *testing.T) {
	users := map[string]UserRef{
		"1": {ID: "1", Username: "ann"},
		"2": {ID: "2", Username: "bob"},
	}

	task := Task{ID: "10", Title: "t", CreatedBy: "1", AssignedTo: "2"}
	pt := task.Populate(users)
	require.Equal(t, &UserRef{ID: "1", Username: "ann"}, pt.CreatedBy)
	require.Equal(t, &UserRef{ID: "2", Username: "bob"}, pt.AssignedTo)

	// unassigned and dangling references resolve to nil
	task = Task{ID: "11", Title: "t", CreatedBy: "99"}
	pt = task.Populate(users)
	require.Nil(t, pt.CreatedBy)
	require.Nil(t, pt.AssignedTo)
}

func TestUserProfile(t *testing.T) {
	u := User{ID: "1", Username: "ann", Email: "a@example.com", PasswordHash: "hash", Role: "admin"}
	require.Equal(t, Profile{ID: "1", Username: "ann", Email: "a@example.com", Role: "admin"}, u.Profile())
}
