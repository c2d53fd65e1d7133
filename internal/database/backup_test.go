package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"salonbook/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "source.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.CreateBookingChecked(context.Background(), testBooking("10:00")))
	db.Close()

	backupDir := filepath.Join(tempDir, "backups")
	logger := zerolog.Nop()
	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The snapshot is a valid database with the data intact.
	restored, err := NewDB(filepath.Join(backupDir, entries[0].Name()))
	require.NoError(t, err)
	defer restored.Close()

	list, err := restored.ListByProviderAndDate(context.Background(), "prov-1",
		time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCleanupOldBackups(t *testing.T) {
	backupDir := t.TempDir()

	oldFile := filepath.Join(backupDir, "backup_old.db")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	oldTime := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))

	freshFile := filepath.Join(backupDir, "backup_fresh.db")
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	logger := zerolog.Nop()
	svc := NewBackupService("", config.BackupConfig{
		StoragePath:   backupDir,
		RetentionDays: 14,
	}, &logger)
	svc.CleanupOldBackups()

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, freshFile)
}

func TestBackupService_DisabledDoesNothing(t *testing.T) {
	logger := zerolog.Nop()
	svc := NewBackupService("", config.BackupConfig{Enabled: false}, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	svc.Start(ctx) // returns immediately when disabled
}
