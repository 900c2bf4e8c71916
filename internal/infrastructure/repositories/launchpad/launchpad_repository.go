package launchpad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const (
	defaultAPIRoot = "https://api.launchpad.net/1.0"
	oauthRealm     = "https://api.launchpad.net/"
)

// LaunchpadRepository is a thin client for the Launchpad REST API, signing
// requests with the PLAINTEXT OAuth credentials launchpadlib stores in its
// credentials file.
type LaunchpadRepository struct {
	root        string
	consumerKey string
	token       string
	tokenSecret string
	client      *http.Client
}

// NewLaunchpadRepository loads the launchpadlib-format credentials file.
func NewLaunchpadRepository(cfg repositories.BugTrackerConfig) (repositories.BugTrackerRepository, error) {
	creds, err := ini.Load(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load launchpad credentials %s: %w", cfg.CredentialsFile, err)
	}

	section := creds.Section("1")
	repo := &LaunchpadRepository{
		root:        defaultAPIRoot,
		consumerKey: section.Key("consumer_key").String(),
		token:       section.Key("access_token").String(),
		tokenSecret: section.Key("access_secret").String(),
		client:      &http.Client{Timeout: 60 * time.Second},
	}
	if repo.token == "" {
		return nil, fmt.Errorf("no access token in %s", cfg.CredentialsFile)
	}
	return repo, nil
}

func (it *LaunchpadRepository) authorization() string {
	return fmt.Sprintf(`OAuth realm=%q, oauth_consumer_key=%q, oauth_token=%q, `+
		`oauth_signature_method="PLAINTEXT", oauth_signature=%q, `+
		`oauth_timestamp="%d", oauth_nonce="%d", oauth_version="1.0"`,
		oauthRealm, it.consumerKey, it.token, "&"+it.tokenSecret,
		time.Now().Unix(), rand.Int63())
}

func (it *LaunchpadRepository) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", it.authorization())
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := it.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("launchpad request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("launchpad %s %s: %s: %s",
			method, rawURL, resp.Status, strings.TrimSpace(string(payload)))
	}
	return payload, nil
}

func (it *LaunchpadRepository) getJSON(ctx context.Context, rawURL string, out any) error {
	payload, err := it.do(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

// postOp invokes a named ws.op on a resource.
func (it *LaunchpadRepository) postOp(ctx context.Context, rawURL, op string, params url.Values) ([]byte, error) {
	params.Set("ws.op", op)
	return it.do(ctx, http.MethodPost, rawURL,
		strings.NewReader(params.Encode()), "application/x-www-form-urlencoded")
}

// patch updates resource attributes, launchpadlib style.
func (it *LaunchpadRepository) patch(ctx context.Context, rawURL string, attrs map[string]any) error {
	body, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	_, err = it.do(ctx, http.MethodPatch, rawURL, bytes.NewReader(body), "application/json")
	return err
}

type taskEntry struct {
	BugTargetName string `json:"bug_target_name"`
	Status        string `json:"status"`
	SelfLink      string `json:"self_link"`
	WebLink       string `json:"web_link"`
	BugLink       string `json:"bug_link"`
}

type taskCollection struct {
	Entries            []taskEntry `json:"entries"`
	NextCollectionLink string      `json:"next_collection_link"`
}

func (it *LaunchpadRepository) bugTasks(ctx context.Context, bugNumber string) ([]taskEntry, error) {
	var all []taskEntry
	next := fmt.Sprintf("%s/bugs/%s/bug_tasks", it.root, bugNumber)
	for next != "" {
		var page taskCollection
		if err := it.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Entries...)
		next = page.NextCollectionLink
	}
	return all, nil
}

func toBugTask(bugNumber string, entry taskEntry) entities.BugTask {
	return entities.BugTask{
		BugNumber:  bugNumber,
		TargetName: entry.BugTargetName,
		Status:     entry.Status,
		SelfLink:   entry.SelfLink,
		WebLink:    entry.WebLink,
	}
}

// TaskFor returns the bug's task targeting one of the given project names,
// or nil when none of its tasks match.
func (it *LaunchpadRepository) TaskFor(ctx context.Context, bugNumber string, targets []string) (*entities.BugTask, error) {
	tasks, err := it.bugTasks(ctx, bugNumber)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, target := range targets {
		wanted[target] = true
	}
	for _, entry := range tasks {
		if wanted[entry.BugTargetName] {
			task := toBugTask(bugNumber, entry)
			return &task, nil
		}
	}
	return nil, nil
}

func (it *LaunchpadRepository) RelatedTasks(ctx context.Context, task entities.BugTask) ([]entities.BugTask, error) {
	entries, err := it.bugTasks(ctx, task.BugNumber)
	if err != nil {
		return nil, err
	}

	var related []entities.BugTask
	for _, entry := range entries {
		if entry.SelfLink == task.SelfLink {
			continue
		}
		related = append(related, toBugTask(task.BugNumber, entry))
	}
	return related, nil
}

func (it *LaunchpadRepository) AddMessage(ctx context.Context, task entities.BugTask, subject, body string) error {
	_, err := it.postOp(ctx, it.bugURL(task.BugNumber), "newMessage", url.Values{
		"subject": {subject},
		"content": {body},
	})
	return err
}

func (it *LaunchpadRepository) SetStatus(ctx context.Context, task entities.BugTask, status string) error {
	return it.patch(ctx, task.SelfLink, map[string]any{"status": status})
}

// SetAssigneeByOpenID assigns the task to the Launchpad person owning the
// OpenID identifier; unresolvable identifiers are logged and ignored.
func (it *LaunchpadRepository) SetAssigneeByOpenID(ctx context.Context, task entities.BugTask, openID string) error {
	lookup := fmt.Sprintf("%s/people?ws.op=getByOpenIDIdentifier&identifier=%s",
		it.root, url.QueryEscape(openID))

	var person struct {
		SelfLink string `json:"self_link"`
	}
	if err := it.getJSON(ctx, lookup, &person); err != nil || person.SelfLink == "" {
		log.Debugf("no launchpad person for openid %s: %v", openID, err)
		return nil
	}
	return it.patch(ctx, task.SelfLink, map[string]any{"assignee_link": person.SelfLink})
}

func (it *LaunchpadRepository) AddTag(ctx context.Context, task entities.BugTask, tag string) error {
	bugURL := it.bugURL(task.BugNumber)

	var bug struct {
		Tags []string `json:"tags"`
	}
	if err := it.getJSON(ctx, bugURL, &bug); err != nil {
		return err
	}
	for _, existing := range bug.Tags {
		if existing == tag {
			return nil
		}
	}
	return it.patch(ctx, bugURL, map[string]any{"tags": append(bug.Tags, tag)})
}

func (it *LaunchpadRepository) CreateBug(ctx context.Context, target, title, description string, tags []string) (entities.CreatedBug, error) {
	params := url.Values{
		"target":      {it.root + "/" + target},
		"title":       {title},
		"description": {description},
	}
	for _, tag := range tags {
		params.Add("tags", tag)
	}

	payload, err := it.postOp(ctx, it.root+"/bugs", "createBug", params)
	if err != nil {
		return entities.CreatedBug{}, err
	}

	var bug struct {
		ID      int    `json:"id"`
		WebLink string `json:"web_link"`
	}
	if err = json.Unmarshal(payload, &bug); err != nil {
		return entities.CreatedBug{}, err
	}
	return entities.CreatedBug{ID: strconv.Itoa(bug.ID), WebLink: bug.WebLink}, nil
}

func (it *LaunchpadRepository) Subscribe(ctx context.Context, bug entities.CreatedBug, person string) error {
	_, err := it.postOp(ctx, fmt.Sprintf("%s/bugs/%s", it.root, bug.ID), "subscribe", url.Values{
		"person": {fmt.Sprintf("%s/~%s", it.root, person)},
	})
	return err
}

// HasBugWithTitle searches the target project's tasks for an exact title
// match, guarding against filing the same bug twice.
func (it *LaunchpadRepository) HasBugWithTitle(ctx context.Context, target, title string) (bool, error) {
	next := fmt.Sprintf("%s/%s?ws.op=searchTasks&search_text=%s",
		it.root, target, url.QueryEscape(title))
	for next != "" {
		var page struct {
			Entries []struct {
				Title string `json:"title"`
			} `json:"entries"`
			NextCollectionLink string `json:"next_collection_link"`
		}
		if err := it.getJSON(ctx, next, &page); err != nil {
			return false, err
		}
		for _, entry := range page.Entries {
			// Task titles read `Bug #N in project "x": "the title"`.
			if strings.Contains(entry.Title, `"`+title+`"`) {
				return true, nil
			}
		}
		next = page.NextCollectionLink
	}
	return false, nil
}

func (it *LaunchpadRepository) bugURL(bugNumber string) string {
	return fmt.Sprintf("%s/bugs/%s", it.root, bugNumber)
}
