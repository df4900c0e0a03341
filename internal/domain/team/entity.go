package team

type Member struct {
	UserID int64
	Login  string
	Active bool
}

type Team struct {
	Name    string
	Members []Member
}

func (t Team) MemberIDs() []int64 {
	ids := make([]int64, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}
