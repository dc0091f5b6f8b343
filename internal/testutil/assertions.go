package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draft-together/server/internal/domain"
)

// AssertStatusCode checks the response status code.
func AssertStatusCode(t *testing.T, expected int, resp *http.Response) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes the response body into target and checks the
// content type.
func AssertJSONResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json",
		"expected JSON content type")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, target)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertSlot checks that one board slot holds the given champion id.
func AssertSlot(t *testing.T, draft *domain.Draft, position domain.Position, championID int32) {
	t.Helper()
	got := draft.Slot(position)
	require.NotNilf(t, got, "slot %s is empty, want champion %d", position, championID)
	assert.Equalf(t, championID, *got, "wrong champion in slot %s", position)
}

// AssertSlotEmpty checks that one board slot holds no champion.
func AssertSlotEmpty(t *testing.T, draft *domain.Draft, position domain.Position) {
	t.Helper()
	got := draft.Slot(position)
	if got != nil {
		t.Fatalf("slot %s holds champion %d, want empty", position, *got)
	}
}
