package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"unigate/internal/backup"
	"unigate/internal/crypto"
	"unigate/internal/store"
	apperr "unigate/pkg/errors"
)

var (
	// backupDir is the directory archives are written to and read from.
	backupDir string
	// backupInput is the path to an archive for restore/verify.
	backupInput string
	// backupDeep also tests decryption during verify.
	backupDeep bool
)

// backupCmd is the parent command for archive operations.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage wallet archives",
	Long:  `Create, verify, list and restore encrypted wallet archives.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Export all wallet records into an encrypted archive",
	Long: `Export every custodied wallet record into an age-encrypted archive.

The archive file is written with a timestamped name. Phrases stay in their
per-wallet encrypted form; the archive passphrase adds a second layer and is
independent of any user password.

Example:
  unigate backup create --dir backups`,
	RunE: runBackupCreate,
}

var backupVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an archive file",
	Long: `Check an archive's structure and SHA256 checksum.

With --deep the passphrase is prompted and decryption is tested too.`,
	RunE: runBackupVerify,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore wallet records from an archive",
	Long: `Decrypt an archive and insert its wallet records into the database.

Records whose address already exists are skipped.`,
	RunE: runBackupRestore,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archive files",
	RunE:  runBackupList,
}

func runBackupCreate(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	passphrase, err := promptNewPassphrase()
	if err != nil {
		return err
	}
	defer crypto.ZeroBytes(passphrase)

	svc := backup.NewService(backupDir, st)
	archive, path, err := svc.Create(cmd.Context(), string(passphrase))
	if err != nil {
		return err
	}

	fmt.Printf("Archived %d wallets to %s\n", archive.Manifest.WalletCount, path)
	return nil
}

func runBackupVerify(cmd *cobra.Command, _ []string) error {
	if backupInput == "" {
		return apperr.WithMessage(apperr.ErrBadRequest, "--input is required")
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()
	svc := backup.NewService(backupDir, st)

	var manifest *backup.Manifest
	if backupDeep {
		passphrase, perr := promptPassphrase("Archive passphrase: ")
		if perr != nil {
			return perr
		}
		defer crypto.ZeroBytes(passphrase)
		manifest, err = svc.VerifyWithDecryption(backupInput, string(passphrase))
	} else {
		manifest, err = svc.Verify(backupInput)
	}
	if err != nil {
		return err
	}

	fmt.Printf("OK: %d wallets, %d users, created %s\n",
		manifest.WalletCount, manifest.UserCount, manifest.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runBackupRestore(cmd *cobra.Command, _ []string) error {
	if backupInput == "" {
		return apperr.WithMessage(apperr.ErrBadRequest, "--input is required")
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	passphrase, err := promptPassphrase("Archive passphrase: ")
	if err != nil {
		return err
	}
	defer crypto.ZeroBytes(passphrase)

	restored, err := backup.NewService(backupDir, st).Restore(cmd.Context(), backupInput, string(passphrase))
	if err != nil {
		return err
	}

	fmt.Printf("Restored %d wallets\n", restored)
	return nil
}

func runBackupList(_ *cobra.Command, _ []string) error {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	archives, err := backup.NewService(backupDir, st).List()
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		fmt.Println("No archives found")
		return nil
	}
	for _, name := range archives {
		fmt.Println(name)
	}
	return nil
}

// promptPassphrase reads a passphrase with hidden input. The caller zeroes
// the returned bytes after use.
func promptPassphrase(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	passphrase, err := term.ReadPassword(syscall.Stdin)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, apperr.Wrap(err, "reading passphrase")
	}
	return passphrase, nil
}

// promptNewPassphrase prompts for a new passphrase with confirmation.
func promptNewPassphrase() ([]byte, error) {
	passphrase, err := promptPassphrase("Enter archive passphrase: ")
	if err != nil {
		return nil, err
	}
	if len(passphrase) < 8 {
		crypto.ZeroBytes(passphrase)
		return nil, apperr.WithMessage(apperr.ErrBadRequest, "passphrase must be at least 8 characters")
	}

	confirm, err := promptPassphrase("Confirm passphrase: ")
	if err != nil {
		crypto.ZeroBytes(passphrase)
		return nil, err
	}
	defer crypto.ZeroBytes(confirm)

	if string(passphrase) != string(confirm) {
		crypto.ZeroBytes(passphrase)
		return nil, apperr.WithMessage(apperr.ErrBadRequest, "passphrases do not match")
	}
	return passphrase, nil
}

func init() {
	backupCmd.PersistentFlags().StringVar(&backupDir, "dir", "backups", "archive directory")
	backupVerifyCmd.Flags().StringVar(&backupInput, "input", "", "path to archive file")
	backupVerifyCmd.Flags().BoolVar(&backupDeep, "deep", false, "also test decryption")
	backupRestoreCmd.Flags().StringVar(&backupInput, "input", "", "path to archive file")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupVerifyCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupListCmd)
}
