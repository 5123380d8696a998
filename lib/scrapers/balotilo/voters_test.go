package balotilo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const voterBlob = "alice@example.org\nbob@example.org\ncarol@example.org"

func TestImportVoters(t *testing.T) {
	site := newFakeSite(t)
	client := site.client(t)

	err := client.ImportVoters(context.Background(), "4242", voterBlob)
	require.NoError(t, err)
	require.Equal(t, voterBlob, site.importedEmails)
}

func TestImportVotersBouncedBackToEditor(t *testing.T) {
	site := newFakeSite(t)
	site.rejectImport = true
	client := site.client(t)

	err := client.ImportVoters(context.Background(), "4242", voterBlob)
	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	require.Contains(t, importErr.Location, "edit_new_voters")
}
