package commands

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const docImpactTriagePrelude = `Dear documentation bug triager. This bug was created here because we did
not know how to map the project to a documentation repository. You can
change the target if a better one exists.`

// NotifyImpact is the interface for the impact-flag hook handler.
type NotifyImpact interface {
	Execute(ctx context.Context, event entities.HookEvent, opts NotifyImpactOptions) error
}

// NotifyImpactOptions holds runtime options for one hook invocation.
type NotifyImpactOptions struct {
	Impact      string // flag to look for: DocImpact, SecurityImpact, ...
	DestAddress string // notification address for non-doc impacts
	DryRun      bool   // log intended actions without performing them
}

// NotifyImpactCommand reacts to impact flags in commit messages. A merged
// DocImpact change files a documentation bug (once; duplicate titles are
// skipped); any other impact flag notifies the configured mailing list.
type NotifyImpactCommand struct {
	mirror            repositories.MirrorRepository
	bugTrackerFactory repositories.BugTrackerFactory
	mailFactory       repositories.MailFactory
}

// NewNotifyImpactCommand creates a new NotifyImpactCommand.
func NewNotifyImpactCommand(
	mirror repositories.MirrorRepository,
	bugTrackerFactory repositories.BugTrackerFactory,
	mailFactory repositories.MailFactory,
) *NotifyImpactCommand {
	return &NotifyImpactCommand{
		mirror:            mirror,
		bugTrackerFactory: bugTrackerFactory,
		mailFactory:       mailFactory,
	}
}

func (it *NotifyImpactCommand) Execute(ctx context.Context, event entities.HookEvent, opts NotifyImpactOptions) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	settings := entities.NewSiteSettings(registry.Defaults())

	gitLog, err := it.commitLog(ctx, settings, event)
	if err != nil {
		return err
	}

	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(opts.Impact) + `\b`)
	if err != nil {
		return err
	}
	if !pattern.MatchString(gitLog) {
		return nil
	}

	if strings.EqualFold(opts.Impact, "DocImpact") {
		if event.Hook != entities.HookChangeMerged {
			return nil
		}
		return it.fileDocBug(ctx, registry, settings, event, gitLog, opts)
	}
	return it.sendImpactMail(ctx, registry.Defaults(), settings, event, gitLog, opts)
}

// commitLog renders a git-log style block for the triggering commit: the
// header lines the bug title extraction depends on, then the message.
func (it *NotifyImpactCommand) commitLog(ctx context.Context, settings *entities.SiteSettings, event entities.HookEvent) (string, error) {
	message, err := it.mirror.CommitMessage(settings.HookRepoPath(event.Project), event.Commit)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "commit %s\n", event.Commit)
	fmt.Fprintf(&buf, "Author: %s\n", event.ChangeOwner)
	fmt.Fprintf(&buf, "Date:   %s\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(message, "\n"), "\n") {
		buf.WriteString("    " + line + "\n")
	}
	return buf.String(), nil
}

func (it *NotifyImpactCommand) fileDocBug(
	ctx context.Context,
	registry *entities.Registry,
	settings *entities.SiteSettings,
	event entities.HookEvent,
	gitLog string,
	opts NotifyImpactOptions,
) error {
	lines := strings.Split(gitLog, "\n")
	if len(lines) < 5 {
		return fmt.Errorf("commit log of %s is too short to extract a title", event.Commit)
	}
	title := strings.TrimSpace(lines[4])

	target := registry.DocImpactTarget(event.Project)
	project, _ := registry.Lookup(event.Project)

	description := event.ChangeURL + "\n" + gitLog
	tags := []string{project.ShortName()}
	if target != "openstack-manuals" {
		// Bugs landing outside the main manuals queue carry the doc tag so
		// the documentation team still finds them, plus a triage note when
		// the registry could not name a target at all.
		tags = append(tags, "doc")
		if target == "unknown" {
			description = event.ChangeURL + "\n" + docImpactTriagePrelude + "\n\n" + gitLog
		}
	}

	tracker, err := it.bugTrackerFactory(repositories.BugTrackerConfig{
		CredentialsFile: entities.EnvOr(entities.EnvGerritCredentials, ""),
		CacheDir:        settings.CacheDir,
	})
	if err != nil {
		return err
	}

	duplicate, err := tracker.HasBugWithTitle(ctx, target, title)
	if err != nil {
		return err
	}
	if duplicate {
		logger.Infof("A bug titled %q already exists on %s, not filing another", title, target)
		return nil
	}

	if opts.DryRun {
		logger.Infof("Would file bug %q against %s with tags %v", title, target, tags)
		return nil
	}

	bug, err := tracker.CreateBug(ctx, target, title, description, tags)
	if err != nil {
		return err
	}
	logger.Infof("Filed documentation bug %s (%s)", bug.ID, bug.WebLink)

	for _, person := range it.subscribers(registry.Defaults(), event) {
		if err = tracker.Subscribe(ctx, bug, person); err != nil {
			logger.Warnf("Failed to subscribe %s to bug %s: %v", person, bug.ID, err)
		}
	}
	return nil
}

// subscribers collects the tracker accounts to put on a new bug: the change
// owner resolved through the author map, plus the per-project subscriber
// list. Both maps are optional INI files named in the registry defaults.
func (it *NotifyImpactCommand) subscribers(defaults entities.Defaults, event entities.HookEvent) []string {
	var people []string

	if path := defaults.GetString("docimpact-author-map", ""); path != "" {
		if cfg, err := ini.Load(path); err == nil {
			if person := cfg.Section("").Key(event.OwnerEmail()).String(); person != "" {
				people = append(people, person)
			}
		} else {
			logger.Warnf("Failed to load author map %s: %v", path, err)
		}
	}

	if path := defaults.GetString("docimpact-subscriber-map", ""); path != "" {
		if cfg, err := ini.Load(path); err == nil {
			raw := cfg.Section("").Key(event.Project).String()
			for _, person := range strings.Split(raw, ",") {
				if person = strings.TrimSpace(person); person != "" {
					people = append(people, person)
				}
			}
		} else {
			logger.Warnf("Failed to load subscriber map %s: %v", path, err)
		}
	}

	return people
}

func (it *NotifyImpactCommand) sendImpactMail(
	ctx context.Context,
	defaults entities.Defaults,
	settings *entities.SiteSettings,
	event entities.HookEvent,
	gitLog string,
	opts NotifyImpactOptions,
) error {
	if opts.DestAddress == "" {
		return fmt.Errorf("no destination address for %s notifications", opts.Impact)
	}

	input := repositories.MailInput{
		From:    defaults.GetString("smtp-from", "gerrit@"+settings.GerritHost),
		To:      opts.DestAddress,
		Subject: fmt.Sprintf("[%s] %s review request change %s", opts.Impact, event.Project, event.Change),
		Body:    fmt.Sprintf("Hi, I'd like you to take a look at this patch for potential\n%s.\n%s\n\nLog:\n%s", opts.Impact, event.ChangeURL, gitLog),
	}
	if opts.DryRun {
		logger.Infof("Would mail %s about %s on %s", input.To, opts.Impact, event.Change)
		return nil
	}

	mailer := it.mailFactory(repositories.SMTPConfig{
		Host:     defaults.GetString("smtp-host", "localhost"),
		Port:     defaults.GetInt("smtp-port", 25),
		SSL:      defaults.GetBool("smtp-ssl", false),
		StartTLS: defaults.GetBool("smtp-starttls", false),
		User:     entities.EnvOr(entities.EnvSMTPUser, defaults.GetString("smtp-user", "")),
		Password: entities.EnvOr(entities.EnvSMTPPass, defaults.GetString("smtp-password", "")),
	})
	return mailer.Send(ctx, input)
}
