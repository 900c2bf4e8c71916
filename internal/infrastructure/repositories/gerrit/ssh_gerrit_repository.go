package gerrit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const dialTimeout = 30 * time.Second

// SSHGerritRepository drives Gerrit's administrative command channel over
// SSH, one session per command.
type SSHGerritRepository struct {
	addr   string
	config *ssh.ClientConfig
}

// NewSSHGerritRepository loads the private key and prepares a client
// configuration for the Gerrit service account.
func NewSSHGerritRepository(cfg repositories.GerritConfig) (repositories.GerritRepository, error) {
	key, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read gerrit key %s: %w", cfg.KeyFile, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gerrit key %s: %w", cfg.KeyFile, err)
	}

	return &SSHGerritRepository{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		config: &ssh.ClientConfig{
			User: cfg.User,
			Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
			// The Gerrit host key is provisioned out of band alongside the
			// service account key.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         dialTimeout,
		},
	}, nil
}

func (it *SSHGerritRepository) run(ctx context.Context, command string) (string, error) {
	client, err := ssh.Dial("tcp", it.addr, it.config)
	if err != nil {
		return "", fmt.Errorf("failed to dial gerrit at %s: %w", it.addr, err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to open gerrit session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	case err = <-done:
	}

	log.Debugf("gerrit command %q: %s", command, strings.TrimSpace(stderr.String()))
	if err != nil {
		return "", fmt.Errorf("gerrit command %q failed: %w: %s",
			command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (it *SSHGerritRepository) ListProjects(ctx context.Context) ([]string, error) {
	out, err := it.run(ctx, "gerrit ls-projects")
	if err != nil {
		return nil, err
	}

	var projects []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			projects = append(projects, line)
		}
	}
	return projects, nil
}

func (it *SSHGerritRepository) CreateProject(ctx context.Context, name string) error {
	_, err := it.run(ctx, "gerrit create-project --require-change-id "+shellQuote(name))
	return err
}

func (it *SSHGerritRepository) CreateGroup(ctx context.Context, name string) error {
	_, err := it.run(ctx, "gerrit create-group --visible-to-all "+shellQuote(name))
	return err
}

func (it *SSHGerritRepository) Replicate(ctx context.Context, project string) error {
	_, err := it.run(ctx, "replication start "+shellQuote(project))
	return err
}

func (it *SSHGerritRepository) Review(ctx context.Context, target, message string, abandon bool) error {
	command := "gerrit review --message " + shellQuote(message)
	if abandon {
		command += " --abandon"
	}
	_, err := it.run(ctx, command+" "+shellQuote(target))
	return err
}

// QueryReviewed returns the open changes with at least one review vote and
// no activity for the given age. Gerrit streams one JSON object per line
// and terminates with a stats row, which is dropped.
func (it *SSHGerritRepository) QueryReviewed(ctx context.Context, age string) ([]entities.Review, error) {
	command := fmt.Sprintf(
		"gerrit query --current-patch-set --all-approvals --format JSON status:reviewed age:%s", age)
	out, err := it.run(ctx, command)
	if err != nil {
		return nil, err
	}
	return parseReviewRows(out), nil
}

func parseReviewRows(out string) []entities.Review {
	var reviews []entities.Review
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var row struct {
			entities.Review
			RowCount *int `json:"rowCount"`
		}
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			log.Warnf("skipping unparseable gerrit query row: %v", err)
			continue
		}
		if row.RowCount != nil {
			continue
		}
		reviews = append(reviews, row.Review)
	}
	return reviews
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
