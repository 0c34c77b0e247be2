package memory

import (
	"github.com/pickemhq/pickem-backend/internal/domain/group"
)

const (
	GroupIDSundayRegulars = int64(1)
	GroupIDOfficePool     = int64(2)
)

func SeedGroups() []group.Group {
	return []group.Group{
		{ID: GroupIDSundayRegulars, Name: "Sunday Regulars"},
		{ID: GroupIDOfficePool, Name: "Office Pool"},
	}
}

func SeedMembers() map[int64][]group.Member {
	return map[int64][]group.Member{
		GroupIDSundayRegulars: {
			{UserID: "user-alice", Name: "Alice Chen"},
			{UserID: "user-bob", Name: "Bob Romero"},
			{UserID: "user-carol", Name: "Carol Njoku"},
		},
		GroupIDOfficePool: {
			{UserID: "user-alice", Name: "Alice Chen"},
			{UserID: "user-dave", Name: "Dave Okafor"},
		},
	}
}
