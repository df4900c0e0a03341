package metrics

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/pr"
)

type reviewKey struct {
	userID int64
	prID   int64
}

// Aggregate computes one ReviewMetrics row per user for the given window.
//
// Every user in users gets a row, zero activity included. Reviewers that are
// not in users are added from the review data. Only submitted reviews inside
// the window count towards the review columns; reviews outside the window are
// still used to decide whether an open request is answered (Pending).
func Aggregate(users []member.User, prs []pr.PullRequest, reviews []pr.Review, window TimeRange) []ReviewMetrics {
	rows := make(map[int64]*ReviewMetrics, len(users))
	for _, u := range users {
		rows[u.ID] = &ReviewMetrics{
			UserID:    u.ID,
			Login:     u.Login,
			Name:      u.DisplayName(),
			AvatarURL: u.AvatarURL,
		}
	}

	prByID := make(map[int64]pr.PullRequest, len(prs))
	for _, p := range prs {
		prByID[p.ID] = p
	}

	reviewedEver := make(map[reviewKey]bool)
	reviewedInWindow := make(map[int64]map[int64]bool)
	firstReview := make(map[reviewKey]time.Time)
	repos := make(map[int64]map[string]bool)

	for _, r := range reviews {
		if !r.State.Submitted() {
			continue
		}
		key := reviewKey{userID: r.UserID, prID: r.PullRequestID}
		reviewedEver[key] = true

		if !window.Contains(r.SubmittedAt) {
			continue
		}

		row, ok := rows[r.UserID]
		if !ok {
			row = &ReviewMetrics{UserID: r.UserID, Login: r.UserLogin, Name: r.UserLogin}
			rows[r.UserID] = row
		}

		switch r.State {
		case pr.ReviewApproved:
			row.Approved++
		case pr.ReviewChangesRequested:
			row.ChangesRequested++
		case pr.ReviewCommented:
			row.Commented++
		}

		if reviewedInWindow[r.UserID] == nil {
			reviewedInWindow[r.UserID] = make(map[int64]bool)
		}
		reviewedInWindow[r.UserID][r.PullRequestID] = true

		repo := r.RepositoryName
		if p, ok := prByID[r.PullRequestID]; ok && repo == "" {
			repo = p.RepositoryName
		}
		if repo != "" {
			if repos[r.UserID] == nil {
				repos[r.UserID] = make(map[string]bool)
			}
			repos[r.UserID][repo] = true
		}

		if first, ok := firstReview[key]; !ok || r.SubmittedAt.Before(first) {
			firstReview[key] = r.SubmittedAt
		}
	}

	for _, p := range prs {
		if window.Contains(p.CreatedAt) {
			if row, ok := rows[p.AuthorID]; ok {
				row.Opened++
			}
			seen := make(map[int64]bool, len(p.RequestedReviewers))
			for _, rv := range p.RequestedReviewers {
				if seen[rv.UserID] || rv.UserID == p.AuthorID {
					continue
				}
				seen[rv.UserID] = true
				if row, ok := rows[rv.UserID]; ok {
					row.Assigned++
				}
			}
		}

		if !p.IsOpen() {
			continue
		}
		for _, rv := range p.RequestedReviewers {
			if !rv.Pending || rv.UserID == p.AuthorID {
				continue
			}
			row, ok := rows[rv.UserID]
			if !ok {
				continue
			}
			row.OpenAgainst++
			if !reviewedEver[reviewKey{userID: rv.UserID, prID: p.ID}] {
				row.Pending++
			}
		}
	}

	latencies := make(map[int64]stats.Float64Data)
	for key, first := range firstReview {
		p, ok := prByID[key.prID]
		if !ok || p.AuthorID == key.userID {
			continue
		}
		d := first.Sub(p.CreatedAt)
		if d < 0 {
			continue
		}
		latencies[key.userID] = append(latencies[key.userID], d.Hours())
	}

	out := make([]ReviewMetrics, 0, len(rows))
	for id, row := range rows {
		row.TotalReviewed = len(reviewedInWindow[id])
		row.RepositoriesReviewed = len(repos[id])
		row.MedianResponseHours, row.P90ResponseHours = responseHours(latencies[id])
		out = append(out, *row)
	}

	SortLeaderboard(out)
	return out
}

// SortLeaderboard orders rows by reviewed pull requests, then by login.
func SortLeaderboard(rows []ReviewMetrics) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalReviewed != rows[j].TotalReviewed {
			return rows[i].TotalReviewed > rows[j].TotalReviewed
		}
		return rows[i].Login < rows[j].Login
	})
}

func responseHours(data stats.Float64Data) (median, p90 float64) {
	if len(data) == 0 {
		return 0, 0
	}
	if m, err := stats.Median(data); err == nil {
		median, _ = stats.Round(m, 2)
	}
	p90 = median
	if p, err := stats.Percentile(data, 90); err == nil {
		p90, _ = stats.Round(p, 2)
	}
	return median, p90
}

// UserPullRequests lists the pull requests userID reviewed inside the window
// or was asked to review when they were opened inside the window. The newest
// activity comes first.
func UserPullRequests(userID int64, prs []pr.PullRequest, reviews []pr.Review, window TimeRange) []UserPR {
	byPR := make(map[int64]*UserPR)
	prByID := make(map[int64]pr.PullRequest, len(prs))
	for _, p := range prs {
		prByID[p.ID] = p
		if p.AuthorID != userID && p.RequestedFrom(userID) && window.Contains(p.CreatedAt) {
			byPR[p.ID] = &UserPR{PullRequest: p, Requested: true}
		}
	}

	for _, r := range reviews {
		if r.UserID != userID || !r.State.Submitted() || !window.Contains(r.SubmittedAt) {
			continue
		}
		p, ok := prByID[r.PullRequestID]
		if !ok {
			continue
		}
		item, ok := byPR[p.ID]
		if !ok {
			item = &UserPR{PullRequest: p, Requested: p.RequestedFrom(userID)}
			byPR[p.ID] = item
		}
		item.ReviewCount++
		if item.LastReviewedAt == nil || r.SubmittedAt.After(*item.LastReviewedAt) {
			at := r.SubmittedAt
			item.LastReviewedAt = &at
			item.LastState = r.State
		}
	}

	out := make([]UserPR, 0, len(byPR))
	for _, item := range byPR {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := lastActivity(out[i]), lastActivity(out[j])
		if !ai.Equal(aj) {
			return ai.After(aj)
		}
		return out[i].PullRequest.ID < out[j].PullRequest.ID
	})
	return out
}

func lastActivity(u UserPR) time.Time {
	if u.LastReviewedAt != nil {
		return *u.LastReviewedAt
	}
	return u.PullRequest.CreatedAt
}
