package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"mercator-hq/gatekeep/pkg/config"
)

// ErrNotCloned is returned by GitSource operations before Clone.
var ErrNotCloned = errors.New("repository not cloned")

// CommitInfo describes the commit a document was read from.
type CommitInfo struct {
	SHA       string
	Author    string
	Email     string
	Message   string
	Timestamp time.Time
	Branch    string
}

// GitSource reads the rules file from a local clone of a Git branch.
type GitSource struct {
	config    config.GitRulesConfig
	format    Format
	localPath string
	auth      AuthProvider
	logger    *slog.Logger

	mu   sync.RWMutex
	repo *gogit.Repository
}

// NewGitSource validates cfg and creates a source. Clone must be called
// before Load.
func NewGitSource(cfg config.GitRulesConfig, logger *slog.Logger) (*GitSource, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultGitTimeout
	}

	format, err := FormatFromPath(cfg.Path)
	if err != nil {
		return nil, err
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "gatekeep-rules")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GitSource{
		config:    cfg,
		format:    format,
		localPath: localPath,
		auth:      auth,
		logger:    logger,
	}, nil
}

// Clone opens an existing clone at the local path or clones the branch.
// With CleanOnStart the local path is removed first.
func (s *GitSource) Clone(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.CleanOnStart {
		if err := os.RemoveAll(s.localPath); err != nil {
			return fmt.Errorf("failed to clean existing repository: %w", err)
		}
	}

	if _, err := os.Stat(filepath.Join(s.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(s.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo: %w", err)
		}
		s.repo = repo
		s.logger.Info("opened existing rules repository", "path", s.localPath)
		return nil
	}

	if err := os.MkdirAll(s.localPath, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	repo, err := gogit.PlainCloneContext(cloneCtx, s.localPath, false, &gogit.CloneOptions{
		URL:           s.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(s.config.Branch),
		SingleBranch:  true,
		Depth:         s.config.Depth,
		Auth:          auth,
	})
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	s.repo = repo

	s.logger.Info("cloned rules repository",
		"repository", s.config.Repository,
		"branch", s.config.Branch,
		"auth", s.auth.Type(),
		"duration", time.Since(start),
	)
	return nil
}

// Load implements Source. The revision is the HEAD commit SHA.
func (s *GitSource) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		return nil, ErrNotCloned
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	path := filepath.Join(s.localPath, s.config.Path)
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", s.config.Path, err)
	}

	doc, err := NewDocument(body, s.format, s.Describe())
	if err != nil {
		return nil, fmt.Errorf("%s@%s: %w", s.config.Path, shortSHA(ref.Hash().String()), err)
	}
	doc.Revision = ref.Hash().String()
	return doc, nil
}

// Refresh pulls the tracked branch. It reports true when the pull moved
// HEAD and the diff touched the rules file.
func (s *GitSource) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return false, ErrNotCloned
	}

	ref, err := s.repo.Head()
	if err != nil {
		return false, fmt.Errorf("failed to get HEAD: %w", err)
	}
	from := ref.Hash()

	worktree, err := s.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return false, fmt.Errorf("failed to get auth: %w", err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(s.config.Branch),
		SingleBranch:  true,
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return false, fmt.Errorf("failed to pull: %w", err)
	}

	newRef, err := s.repo.Head()
	if err != nil {
		return false, fmt.Errorf("failed to get new HEAD: %w", err)
	}
	to := newRef.Hash()
	if from == to {
		return false, nil
	}

	files, err := s.changedFiles(from, to)
	if err != nil {
		// Reload anyway; a spurious reload is harmless.
		s.logger.Warn("failed to diff rules repository", "error", err)
		return true, nil
	}

	rulesPath := filepath.ToSlash(filepath.Clean(s.config.Path))
	for _, f := range files {
		if f == rulesPath {
			s.logger.Info("rules file changed upstream",
				"from", shortSHA(from.String()),
				"to", shortSHA(to.String()),
			)
			return true, nil
		}
	}

	s.logger.Debug("repository updated without rules changes",
		"from", shortSHA(from.String()),
		"to", shortSHA(to.String()),
		"changed_files", len(files),
	)
	return false, nil
}

func (s *GitSource) changedFiles(from, to plumbing.Hash) ([]string, error) {
	fromCommit, err := s.repo.CommitObject(from)
	if err != nil {
		return nil, fmt.Errorf("failed to get from commit: %w", err)
	}
	toCommit, err := s.repo.CommitObject(to)
	if err != nil {
		return nil, fmt.Errorf("failed to get to commit: %w", err)
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get from tree: %w", err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get to tree: %w", err)
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	files := make([]string, 0, len(changes))
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		} else if change.From.Name != "" {
			files = append(files, change.From.Name)
		}
	}
	return files, nil
}

// CurrentCommit returns metadata for HEAD.
func (s *GitSource) CurrentCommit() (*CommitInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		return nil, ErrNotCloned
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	return &CommitInfo{
		SHA:       commit.Hash.String(),
		Author:    commit.Author.Name,
		Email:     commit.Author.Email,
		Message:   commit.Message,
		Timestamp: commit.Author.When,
		Branch:    s.config.Branch,
	}, nil
}

// PollInterval returns the configured poll interval.
func (s *GitSource) PollInterval() time.Duration {
	return s.config.PollInterval
}

// Kind implements Source.
func (s *GitSource) Kind() string {
	return KindGit
}

// Describe implements Source.
func (s *GitSource) Describe() string {
	return fmt.Sprintf("git:%s@%s:%s", s.config.Repository, s.config.Branch, s.config.Path)
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
