package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledger/internal/amqp"
	"ledger/internal/log"
)

const (
	backupPrefix = "backup-"
	backupSuffix = ".json"
	stampLayout  = "20060102T150405Z"
)

// Exporter writes the full ledger document. *services.BackupService
// implements it.
type Exporter interface {
	ExportJSON(ctx context.Context, w io.Writer) error
}

// BackupWorker writes ledger snapshots to a directory, on a fixed interval
// and after change messages. Change messages arriving while a snapshot is
// pending collapse into one.
type BackupWorker struct {
	exporter  Exporter
	dir       string
	retention int
	logger    *log.Logger
	pending   chan struct{}
	now       func() time.Time
}

func NewBackupWorker(exporter Exporter, dir string, retention int, logger *log.Logger) *BackupWorker {
	if retention < 1 {
		retention = 1
	}
	return &BackupWorker{
		exporter:  exporter,
		dir:       dir,
		retention: retention,
		logger:    log.OrDefault(logger).WithComponent(log.ComponentWorker),
		pending:   make(chan struct{}, 1),
		now:       time.Now,
	}
}

// HandleChangeMessage schedules a snapshot. It never blocks.
func (w *BackupWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.logger.DebugContext(ctx, "Change received",
		log.FieldEntity, msg.Entity, log.FieldOperation, msg.Operation, log.FieldCount, len(msg.IDs))
	w.Trigger()
	return nil
}

// Trigger requests a snapshot; repeated calls before it runs are merged.
func (w *BackupWorker) Trigger() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

// Run takes a snapshot every interval and whenever one was triggered,
// until ctx is done. Snapshot failures are logged and retried next round.
func (w *BackupWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Backup worker started",
		"dir", w.dir, "interval", interval, "retention", w.retention)

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Backup worker stopping")
			return nil
		case <-ticker.C:
		case <-w.pending:
		}

		if _, err := w.Snapshot(ctx); err != nil {
			w.logger.LogError(ctx, "Backup snapshot failed", err, log.OpSnapshot, nil)
		}
	}
}

// Snapshot writes one backup file and prunes old ones. The file is written
// under a temporary name and renamed so readers never see a partial file.
func (w *BackupWorker) Snapshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("%s%s-%s%s", backupPrefix, w.now().UTC().Format(stampLayout), uuid.NewString(), backupSuffix)
	path := filepath.Join(w.dir, name)

	tmp, err := os.CreateTemp(w.dir, ".tmp-"+backupPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := w.exporter.ExportJSON(ctx, tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("export ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publish backup: %w", err)
	}

	removed, err := w.prune()
	if err != nil {
		w.logger.LogError(ctx, "Failed to prune backups", err, log.OpSnapshot, nil)
	}

	w.logger.InfoContext(ctx, "Backup written", "file", name, "pruned", removed)
	return path, nil
}

// Backups lists backup files newest first.
func (w *BackupWorker) Backups() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, backupPrefix) && strings.HasSuffix(n, backupSuffix) {
			names = append(names, n)
		}
	}
	// The timestamp follows the prefix, so name order is time order.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (w *BackupWorker) prune() (int, error) {
	names, err := w.Backups()
	if err != nil || len(names) <= w.retention {
		return 0, err
	}

	removed := 0
	for _, n := range names[w.retention:] {
		if err := os.Remove(filepath.Join(w.dir, n)); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
