// Package workspace resolves which Book a collaborator works on: the process-wide one in single-user mode,
// or the active account's one in multi-user mode.
package workspace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
	"github.com/trezcool/scorebook/core/user"
	"github.com/trezcool/scorebook/services/spreadsheet"
	"github.com/trezcool/scorebook/storage"
)

var (
	// errors
	ErrNotAuthenticated = user.ErrNotAuthenticated
	ErrAccountsDisabled = errors.New("accounts are disabled in single-user mode")
	ErrMailDisabled     = errors.New("no email service configured")
	ErrNoStudents       = errors.New("at least one student name is required")
)

type (
	// Recorder receives the counters of the workspace and of the books it opens.
	Recorder interface {
		roster.Recorder
		RecordImport(students int)
		RecordLogin(ok bool)
	}

	Deps struct {
		Conf     *core.Config
		KV       core.KVStore
		Logger   core.Logger
		Mailer   core.EmailService // optional
		Recorder Recorder          // optional
	}

	Workspace struct {
		conf     *core.Config
		gateway  *storage.Gateway
		users    *user.Service
		log      core.Logger
		mailer   core.EmailService
		recorder Recorder

		mu    sync.Mutex
		book  *roster.Book
		owner string // account the book is bound to; "" in single-user mode
	}

	// File is an export ready to be downloaded or attached.
	File struct {
		Name        string
		ContentType string
		Data        []byte
	}

	backupData struct {
		Name     string
		TakenAt  time.Time
		Classes  int
		Students int
		Criteria int
	}
)

func New(deps Deps) *Workspace {
	validate, translator := core.NewValidator()
	return &Workspace{
		conf:     deps.Conf,
		gateway:  storage.NewGateway(deps.KV, deps.Logger),
		users:    user.NewService(storage.NewUserRepository(deps.KV, deps.Logger), validate, translator, deps.Logger),
		log:      deps.Logger,
		mailer:   deps.Mailer,
		recorder: deps.Recorder,
	}
}

// Users exposes the identity store.
func (ws *Workspace) Users() *user.Service { return ws.users }

func (ws *Workspace) IsMultiUser() bool { return ws.conf.IsMultiUser() }

// Start checks the storage medium and, in multi-user mode, resumes the persisted session.
func (ws *Workspace) Start(ctx context.Context) error {
	if err := ws.gateway.Probe(ctx); err != nil {
		return err
	}
	if !ws.IsMultiUser() {
		return nil
	}
	resumed, err := ws.users.Resume(ctx)
	if err != nil {
		return errors.Wrap(err, "resuming session")
	}
	if resumed && ws.log != nil {
		ws.log.Info(fmt.Sprintf("session resumed for %q", ws.users.Current()))
	}
	return nil
}

// Book returns the book of the current scope, opening it on first use.
func (ws *Workspace) Book(ctx context.Context) (*roster.Book, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	deps := roster.Deps{Logger: ws.log}
	if ws.recorder != nil {
		deps.Recorder = ws.recorder
	}

	if !ws.IsMultiUser() {
		if ws.book == nil {
			snap, err := ws.gateway.Load(ctx)
			if err != nil {
				return nil, err
			}
			deps.Saver = ws.gateway
			ws.book = roster.Open(snap, deps)
		}
		return ws.book, nil
	}

	uname := ws.users.Current()
	if uname == "" {
		return nil, ErrNotAuthenticated
	}
	if ws.book != nil && ws.owner == uname {
		return ws.book, nil
	}
	book, err := ws.users.OpenBook(ctx, deps)
	if err != nil {
		return nil, errors.Wrap(err, "opening book")
	}
	ws.book, ws.owner = book, uname
	return book, nil
}

func (ws *Workspace) reset() {
	ws.mu.Lock()
	ws.book, ws.owner = nil, ""
	ws.mu.Unlock()
}

func (ws *Workspace) Signup(ctx context.Context, nu user.NewUser) (user.User, error) {
	if !ws.IsMultiUser() {
		return user.User{}, ErrAccountsDisabled
	}
	usr, err := ws.users.Signup(ctx, nu)
	if err != nil {
		return user.User{}, err
	}
	ws.reset()
	return usr, nil
}

func (ws *Workspace) Login(ctx context.Context, creds user.Credentials) (user.User, error) {
	if !ws.IsMultiUser() {
		return user.User{}, ErrAccountsDisabled
	}
	usr, err := ws.users.Login(ctx, creds)
	if ws.recorder != nil {
		ws.recorder.RecordLogin(err == nil)
	}
	if err != nil {
		return user.User{}, err
	}
	ws.reset()
	return usr, nil
}

func (ws *Workspace) Logout(ctx context.Context) error {
	if !ws.IsMultiUser() {
		return ErrAccountsDisabled
	}
	defer ws.reset()
	return ws.users.Logout(ctx)
}

// DisplayName returns the active account's name; "" in single-user mode or without a session.
func (ws *Workspace) DisplayName(ctx context.Context) (string, error) {
	if !ws.IsMultiUser() {
		return "", nil
	}
	return ws.users.DisplayName(ctx)
}

// Clear wipes the data of the current scope. The next Book starts from an empty roster with default criteria.
func (ws *Workspace) Clear(ctx context.Context) error {
	if ws.IsMultiUser() {
		if !ws.users.IsAuthenticated() {
			return ErrNotAuthenticated
		}
		if err := ws.users.SaveUserData(ctx, roster.NewSnapshot()); err != nil {
			return errors.Wrap(err, "clearing account data")
		}
	} else if err := ws.gateway.Clear(ctx); err != nil {
		return err
	}
	ws.reset()
	if ws.log != nil {
		ws.log.Info("all data cleared")
	}
	return nil
}

// Export serializes the current book as json or yaml.
func (ws *Workspace) Export(ctx context.Context, format string) (File, error) {
	book, err := ws.Book(ctx)
	if err != nil {
		return File{}, err
	}
	data, err := storage.Export(book.Snapshot(), format)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        storage.ExportFilename(core.NowFunc(), format),
		ContentType: storage.ContentType(format),
		Data:        data,
	}, nil
}

// Import creates one class holding one student per name, in order.
func (ws *Workspace) Import(ctx context.Context, className string, names []string) (roster.Class, error) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	if len(cleaned) == 0 {
		return roster.Class{}, ErrNoStudents
	}

	book, err := ws.Book(ctx)
	if err != nil {
		return roster.Class{}, err
	}
	class, err := book.AddClassWithStudents(ctx, className, cleaned)
	if ws.recorder != nil && class.ID != "" {
		ws.recorder.RecordImport(len(class.Students))
	}
	return class, err
}

// ImportFile detects the name column of a spreadsheet and imports it.
// A blank className falls back to the file name.
func (ws *Workspace) ImportFile(ctx context.Context, r io.Reader, filename, className string) (roster.Class, error) {
	res, err := spreadsheet.Parse(r, filename)
	if err != nil {
		return roster.Class{}, core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}
	if className = strings.TrimSpace(className); className == "" {
		className = res.ClassName
	}
	return ws.Import(ctx, className, res.Names)
}

// EmailBackup mails the json export of the current book to `to`.
func (ws *Workspace) EmailBackup(ctx context.Context, to mail.Address) error {
	if ws.mailer == nil {
		return ErrMailDisabled
	}
	book, err := ws.Book(ctx)
	if err != nil {
		return err
	}
	file, err := ws.Export(ctx, storage.FormatJSON)
	if err != nil {
		return err
	}
	name, err := ws.DisplayName(ctx)
	if err != nil {
		return err
	}
	if name == "" {
		name = to.Name
	}

	snap := book.Snapshot()
	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "Scorebook backup",
		TemplateName: "backup",
		TemplateData: backupData{
			Name:     name,
			TakenAt:  core.NowFunc(),
			Classes:  len(snap.Classes),
			Students: snap.StudentCount(),
			Criteria: len(snap.Criteria),
		},
	}
	if err = msg.Attach(bytes.NewReader(file.Data), file.Name, file.ContentType); err != nil {
		return errors.Wrap(err, "attaching export")
	}
	if err = ws.mailer.SendMessages(msg); err != nil {
		return errors.Wrap(err, "sending backup")
	}
	return nil
}
