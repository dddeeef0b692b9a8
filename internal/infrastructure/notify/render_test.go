package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"checkin-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func sampleReport() *entity.Report {
	r := entity.NewReport(time.Date(2026, 3, 7, 8, 0, 0, 0, time.UTC), 2)
	r.Add(entity.NewOutcome(entity.Credential{Identifier: "alice@example.com", Secret: "pw1"},
		entity.OutcomeAlreadyDone, "already done today", "12.50元"))
	r.Add(entity.FailedOutcome(entity.Credential{Identifier: "bob@example.com", Secret: "pw2"},
		errors.New("login timeout: still on login page")))
	r.FinishedAt = time.Date(2026, 3, 7, 8, 2, 0, 0, time.UTC)
	return r
}

func TestRender(t *testing.T) {
	text := Render(sampleReport(), "Leaflow")

	assert.True(t, strings.HasPrefix(text, "🎁 Leaflow daily check-in\n"))
	assert.Contains(t, text, "📊 Succeeded: 1/2")
	assert.Contains(t, text, "📅 Date: 2026/03/07")
	assert.Contains(t, text, "Account: ali***@example.com\n✅ already done today\n💰 Balance: 12.50元")
	assert.Contains(t, text, "Account: bob***@example.com\n❌ login timeout")
	assert.Contains(t, text, "💰 Balance: unknown")

	assert.Less(t, strings.Index(text, "ali***"), strings.Index(text, "bob***"))
	for _, secret := range []string{"pw1", "pw2", "alice@", "bob@"} {
		assert.NotContains(t, text, secret)
	}
}

func TestRender_EmptyReport(t *testing.T) {
	r := entity.NewReport(time.Now(), 0)

	text := Render(r, "Leaflow")

	assert.Contains(t, text, "📊 Succeeded: 0/0")
	assert.NotContains(t, text, "Account:")
}
