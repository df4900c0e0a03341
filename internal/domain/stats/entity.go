package stats

// ReviewerLoad counts review requests addressed to one active member.
type ReviewerLoad struct {
	UserID         int64
	Login          string
	AssignedTotal  int
	AssignedOpen   int
	AssignedMerged int
}

// RepositoryBacklog summarizes the review queue of one repository.
type RepositoryBacklog struct {
	Repository      string
	PullRequests    int
	Open            int
	Unreviewed      int
	PendingRequests int
}
