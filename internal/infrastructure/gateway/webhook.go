package gateway

import (
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/pr"
	"reviewarena/internal/domain/webhook"
)

// WebhookParser verifies X-Hub-Signature-256 and decodes the deliveries the
// service reacts to. Without a secret the signature is not checked.
type WebhookParser struct {
	secret []byte
}

func NewWebhookParser(secret string) *WebhookParser {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &WebhookParser{secret: key}
}

func (p *WebhookParser) Parse(r *http.Request) (webhook.Event, error) {
	payload, err := github.ValidatePayload(r, p.secret)
	if err != nil {
		if p.secret != nil {
			return webhook.Event{}, &domain.DomainError{
				Code:       domain.ErrorCodeInvalidSignature,
				Message:    "webhook signature verification failed",
				HTTPStatus: http.StatusUnauthorized,
			}
		}
		return webhook.Event{}, domain.BadRequest("invalid webhook payload: " + err.Error())
	}

	e := webhook.Event{
		Name:       github.WebHookType(r),
		DeliveryID: github.DeliveryID(r),
	}
	switch e.Name {
	case webhook.EventPullRequest, webhook.EventPullRequestReview, webhook.EventPush:
	default:
		return e, nil
	}

	raw, err := github.ParseWebHook(e.Name, payload)
	if err != nil {
		return webhook.Event{}, domain.BadRequest("invalid webhook payload: " + err.Error())
	}

	switch ev := raw.(type) {
	case *github.PullRequestEvent:
		org := ev.GetRepo().GetOwner().GetLogin()
		p := toPullRequest(ev.GetPullRequest(), org)
		fillRepo(&p, ev.GetRepo())

		e.Action = ev.GetAction()
		e.Organization = org
		e.Repository = ev.GetRepo().GetName()
		e.DefaultBranch = ev.GetRepo().GetDefaultBranch()
		e.PullRequest = &p

	case *github.PullRequestReviewEvent:
		org := ev.GetRepo().GetOwner().GetLogin()
		p := toPullRequest(ev.GetPullRequest(), org)
		fillRepo(&p, ev.GetRepo())
		r := toReview(ev.GetReview())

		e.Action = ev.GetAction()
		e.Organization = org
		e.Repository = ev.GetRepo().GetName()
		e.DefaultBranch = ev.GetRepo().GetDefaultBranch()
		e.PullRequest = &p
		e.Review = &r

	case *github.PushEvent:
		repo := ev.GetRepo()
		org := repo.GetOwner().GetLogin()
		if org == "" {
			org = repo.GetOwner().GetName()
		}
		e.Organization = org
		e.Repository = repo.GetName()
		e.DefaultBranch = repo.GetDefaultBranch()
		e.Ref = ev.GetRef()
	}

	e.Action = strings.ToLower(e.Action)
	return e, nil
}

// fillRepo covers payloads whose nested base repository is abbreviated.
func fillRepo(p *pr.PullRequest, repo *github.Repository) {
	if p.RepositoryID == 0 {
		p.RepositoryID = repo.GetID()
	}
	if p.RepositoryName == "" {
		p.RepositoryName = repo.GetName()
	}
}
