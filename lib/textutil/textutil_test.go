package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanCandidate(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{
			input:    "DUPONT Jean jean.dupont@example.org",
			expected: "DUPONT Jean",
		},
		{
			input:    "MARTIN Claire 0688914976",
			expected: "MARTIN Claire",
		},
		{
			input:    "MARTIN Claire 06 88 91 49 76",
			expected: "MARTIN Claire",
		},
		{
			input:    "MARTIN Claire +33 6.88.91.49.76",
			expected: "MARTIN Claire",
		},
		{
			input:    "DURAND-LEROY Anne / GARCIA Luis",
			expected: "DURAND-LEROY Anne GARCIA Luis",
		},
		{
			input:    "D'ALMEIDA  Marc,",
			expected: "D'ALMEIDA Marc",
		},
		{
			input:    "",
			expected: "",
		},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, CleanCandidate(test.input), "input: %q", test.input)
	}
}

func TestPadDepartment(t *testing.T) {
	require.Equal(t, "04", PadDepartment("4"))
	require.Equal(t, "93", PadDepartment("93"))
	require.Equal(t, "974", PadDepartment("974"))
	require.Equal(t, "07", PadDepartment(" 7 "))
}
