package workspace

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
	"github.com/trezcool/scorebook/core/rubric"
	"github.com/trezcool/scorebook/core/user"
	emailsvc "github.com/trezcool/scorebook/services/email"
	logsvc "github.com/trezcool/scorebook/services/logger"
	inmemkv "github.com/trezcool/scorebook/storage/kv/inmem"
)

type spyRecorder struct {
	scoreUpdates, saves, imported int
	logins                        []bool
}

func (r *spyRecorder) RecordScoreUpdate()        { r.scoreUpdates++ }
func (r *spyRecorder) RecordSave(error)          { r.saves++ }
func (r *spyRecorder) RecordImport(students int) { r.imported += students }
func (r *spyRecorder) RecordLogin(ok bool)       { r.logins = append(r.logins, ok) }

func testConfig(mode string) *core.Config {
	conf := &core.Config{AppName: "Scorebook", Env: "TEST", TestMode: true, Mode: mode}
	conf.DefaultFromEmail = mail.Address{Name: "Scorebook", Address: "noreply@test.local"}
	return conf
}

func newTestWorkspace(t *testing.T, mode string, kv core.KVStore) (*Workspace, *spyRecorder, *emailsvc.ConsoleService) {
	t.Helper()
	conf := testConfig(mode)
	rec := new(spyRecorder)
	mailer := emailsvc.NewConsoleService(conf, nil)
	ws := New(Deps{
		Conf:     conf,
		KV:       kv,
		Logger:   logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		Mailer:   mailer,
		Recorder: rec,
	})
	require.NoError(t, ws.Start(context.Background()))
	return ws, rec, mailer
}

func mockNow(t *testing.T) time.Time {
	t.Helper()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
	return now
}

func TestWorkspace_singleUser(t *testing.T) {
	ctx := context.Background()
	kv := inmemkv.Open()
	ws, rec, _ := newTestWorkspace(t, core.ModeSingle, kv)

	book, err := ws.Book(ctx)
	require.NoError(t, err)
	assert.Equal(t, rubric.Defaults(), book.Criteria())

	again, err := ws.Book(ctx)
	require.NoError(t, err)
	assert.Same(t, book, again, "the book is opened once")

	class, err := book.AddClass(ctx, "6D")
	require.NoError(t, err)
	ali, err := book.AddStudent(ctx, class.ID, "Ali Vural")
	require.NoError(t, err)
	_, err = book.UpdateScore(ctx, class.ID, ali.ID, rubric.Odevler, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.scoreUpdates)
	assert.Equal(t, 3, rec.saves)

	t.Run("reload", func(t *testing.T) {
		reloaded, _, _ := newTestWorkspace(t, core.ModeSingle, kv)
		b, err := reloaded.Book(ctx)
		require.NoError(t, err)
		require.Len(t, b.Classes(), 1)
		got, err := b.Student(class.ID, ali.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, got.Total)
	})

	t.Run("accounts are disabled", func(t *testing.T) {
		_, err := ws.Signup(ctx, user.NewUser{Username: "ahmet", Password: "1234"})
		assert.Equal(t, ErrAccountsDisabled, err)
		_, err = ws.Login(ctx, user.Credentials{Username: "ahmet", Password: "1234"})
		assert.Equal(t, ErrAccountsDisabled, err)
		assert.Equal(t, ErrAccountsDisabled, ws.Logout(ctx))
		name, err := ws.DisplayName(ctx)
		require.NoError(t, err)
		assert.Empty(t, name)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, ws.Clear(ctx))
		b, err := ws.Book(ctx)
		require.NoError(t, err)
		assert.Empty(t, b.Classes())
		assert.Equal(t, rubric.Defaults(), b.Criteria())
	})
}

func TestWorkspace_multiUser(t *testing.T) {
	ctx := context.Background()
	kv := inmemkv.Open()
	ws, rec, _ := newTestWorkspace(t, core.ModeMulti, kv)

	_, err := ws.Book(ctx)
	assert.Equal(t, ErrNotAuthenticated, err)
	assert.Equal(t, ErrNotAuthenticated, ws.Clear(ctx))

	_, err = ws.Signup(ctx, user.NewUser{Username: "Ahmet", Password: "1234"})
	require.NoError(t, err)
	name, err := ws.DisplayName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ahmet", name)

	ahmetBook, err := ws.Book(ctx)
	require.NoError(t, err)
	assert.Equal(t, rubric.Defaults(), ahmetBook.Criteria())
	_, err = ahmetBook.AddClass(ctx, "6D")
	require.NoError(t, err)

	require.NoError(t, ws.Logout(ctx))
	_, err = ws.Book(ctx)
	assert.Equal(t, ErrNotAuthenticated, err)

	_, err = ws.Signup(ctx, user.NewUser{Username: "ayse", Password: "abcd"})
	require.NoError(t, err)
	ayseBook, err := ws.Book(ctx)
	require.NoError(t, err)
	assert.NotSame(t, ahmetBook, ayseBook)
	assert.Empty(t, ayseBook.Classes(), "accounts do not share data")

	_, err = ws.Login(ctx, user.Credentials{Username: "AHMET", Password: "nope"})
	assert.Equal(t, user.ErrWrongPassword, errors.Cause(err))
	assert.Equal(t, "ayse", ws.Users().Current(), "a failed login keeps the session")

	_, err = ws.Login(ctx, user.Credentials{Username: "ahmet", Password: "1234"})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, rec.logins)
	b, err := ws.Book(ctx)
	require.NoError(t, err)
	require.Len(t, b.Classes(), 1)
	assert.Equal(t, "6D", b.Classes()[0].Name)

	t.Run("resume", func(t *testing.T) {
		resumed, _, _ := newTestWorkspace(t, core.ModeMulti, kv)
		assert.Equal(t, "ahmet", resumed.Users().Current())
		b, err := resumed.Book(ctx)
		require.NoError(t, err)
		assert.Len(t, b.Classes(), 1)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, ws.Clear(ctx))
		b, err := ws.Book(ctx)
		require.NoError(t, err)
		assert.Empty(t, b.Classes())
		assert.Equal(t, rubric.Defaults(), b.Criteria())
		assert.Equal(t, "ahmet", ws.Users().Current(), "clearing keeps the account")
	})
}

func TestWorkspace_Import(t *testing.T) {
	ctx := context.Background()
	ws, rec, _ := newTestWorkspace(t, core.ModeSingle, inmemkv.Open())

	class, err := ws.Import(ctx, "6D", []string{" Ali Vural ", "", "Ayşe Kaya"})
	require.NoError(t, err)
	assert.Equal(t, "6D", class.Name)
	require.Len(t, class.Students, 2)
	assert.Equal(t, "Ali Vural", class.Students[0].Name)
	for _, s := range class.Students {
		assert.Len(t, s.Scores, len(rubric.Defaults()))
		assert.Zero(t, s.Total)
	}
	assert.Equal(t, 2, rec.imported)

	_, err = ws.Import(ctx, "7A", []string{" ", ""})
	assert.Equal(t, ErrNoStudents, err)

	csv := "No;Adı Soyadı\n1;Mehmet Demir\n2;Zeynep Ak\n"
	class, err = ws.ImportFile(ctx, strings.NewReader(csv), "7A.csv", "")
	require.NoError(t, err)
	assert.Equal(t, "7A", class.Name)
	assert.Len(t, class.Students, 2)

	class, err = ws.ImportFile(ctx, strings.NewReader(csv), "7A.csv", "7B")
	require.NoError(t, err)
	assert.Equal(t, "7B", class.Name)

	_, err = ws.ImportFile(ctx, strings.NewReader(csv), "7A.pdf", "")
	assert.True(t, core.IsValidationError(err))

	book, err := ws.Book(ctx)
	require.NoError(t, err)
	assert.Len(t, book.Classes(), 3)
	assert.Equal(t, 6, rec.imported)
}

func TestWorkspace_Export(t *testing.T) {
	ctx := context.Background()
	mockNow(t)
	ws, _, _ := newTestWorkspace(t, core.ModeSingle, inmemkv.Open())
	_, err := ws.Import(ctx, "6D", []string{"Ali Vural"})
	require.NoError(t, err)

	file, err := ws.Export(ctx, "json")
	require.NoError(t, err)
	assert.Equal(t, "ogrenci_puanlari_2024-05-01.json", file.Name)
	assert.Equal(t, "application/json", file.ContentType)
	var snap roster.Snapshot
	require.NoError(t, json.Unmarshal(file.Data, &snap))
	require.Len(t, snap.Classes, 1)
	assert.Equal(t, "Ali Vural", snap.Classes[0].Students[0].Name)

	file, err = ws.Export(ctx, "yaml")
	require.NoError(t, err)
	assert.Equal(t, "ogrenci_puanlari_2024-05-01.yaml", file.Name)
	assert.Contains(t, string(file.Data), "name: Ali Vural")

	_, err = ws.Export(ctx, "xml")
	assert.Error(t, err)
}

func TestWorkspace_EmailBackup(t *testing.T) {
	ctx := context.Background()
	mockNow(t)
	ws, _, mailer := newTestWorkspace(t, core.ModeMulti, inmemkv.Open())

	to := mail.Address{Name: "Ahmet Hoca", Address: "ahmet@test.local"}
	assert.Equal(t, ErrNotAuthenticated, errors.Cause(ws.EmailBackup(ctx, to)))

	_, err := ws.Signup(ctx, user.NewUser{Username: "Ahmet", Password: "1234"})
	require.NoError(t, err)
	_, err = ws.Import(ctx, "6D", []string{"Ali Vural", "Ayşe Kaya"})
	require.NoError(t, err)
	require.NoError(t, ws.EmailBackup(ctx, to))

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []mail.Address{to}, sent[0].To)
	assert.Contains(t, sent[0].TextContent, "Hello Ahmet,")
	assert.Contains(t, sent[0].TextContent, "2024-05-01 09:00 UTC")
	assert.Contains(t, sent[0].TextContent, "Classes: 1")
	assert.Contains(t, sent[0].TextContent, "Students: 2")
	assert.Contains(t, sent[0].TextContent, "Criteria: 6")
	require.Len(t, sent[0].Attachments, 1)
	assert.Equal(t, "ogrenci_puanlari_2024-05-01.json", sent[0].Attachments[0].Filename)

	noMail := New(Deps{Conf: testConfig(core.ModeSingle), KV: inmemkv.Open()})
	assert.Equal(t, ErrMailDisabled, noMail.EmailBackup(ctx, to))
}
