package session

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager(nil)

	a := m.GetOrCreate("sess-a")
	require.NotNil(t, a)
	require.Equal(t, "sess-a", a.ID())
	require.Same(t, a, m.GetOrCreate("sess-a"))
	require.NotSame(t, a, m.GetOrCreate("sess-b"))
}

func TestManagerRemoveResetsRecord(t *testing.T) {
	m := NewManager(nil)
	sess := m.GetOrCreate("sess-1")
	token := sess.StartProcessing()
	require.True(t, sess.Succeed(token, &Result{Ref: "blob://r"}))

	m.Remove("sess-1")
	require.Nil(t, m.Lookup("sess-1"))
	require.Equal(t, StatusIdle, sess.State().Snapshot().Status)
}

func TestManagerCleanupInactive(t *testing.T) {
	m := NewManager(nil)
	sess := m.GetOrCreate("old")
	sess.mu.Lock()
	sess.lastActivity = time.Now().Add(-3 * time.Hour)
	sess.mu.Unlock()
	m.GetOrCreate("fresh")

	cleaned := m.CleanupInactive(2 * time.Hour)
	require.Equal(t, 1, cleaned)
	require.Nil(t, m.Lookup("old"))
	require.NotNil(t, m.Lookup("fresh"))
}

func TestMirrorWithoutSessionID(t *testing.T) {
	m := NewManager(nil)

	form := url.Values{}
	r := httptest.NewRequest("POST", "/functions/v1/white-label-process", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sess, token := m.Mirror(r)
	require.Nil(t, sess)
	require.Zero(t, token)
	require.Nil(t, m.Lookup(""))
}

func TestMirrorStartsProcessing(t *testing.T) {
	m := NewManager(nil)

	form := url.Values{"sessionId": {"sess-42"}}
	r := httptest.NewRequest("POST", "/functions/v1/white-label-process", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sess, token := m.Mirror(r)
	require.NotNil(t, sess)
	require.Equal(t, StatusProcessing, sess.State().Snapshot().Status)

	require.True(t, sess.Succeed(token, &Result{Ref: "blob://done"}))
	require.Equal(t, StatusSuccess, sess.State().Snapshot().Status)
}

func TestNilManagerMirror(t *testing.T) {
	var m *Manager
	r := httptest.NewRequest("POST", "/x", nil)
	sess, token := m.Mirror(r)
	require.Nil(t, sess)
	require.Zero(t, token)
}
