package cli

import (
	"testing"

	"github.com/miqalab/miqa/pkg/miqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionStringFromEnv_MiqaVariableWins(t *testing.T) {
	t.Setenv("MIQA_CONNECTION_STRING", "postgresql://miqa-env/db1")
	t.Setenv("DATABASE_URL", "postgresql://database-url/db2")

	assert.Equal(t, "postgresql://miqa-env/db1", connectionStringFromEnv())
}

func TestConnectionStringFromEnv_DatabaseURLFallback(t *testing.T) {
	t.Setenv("MIQA_CONNECTION_STRING", "")
	t.Setenv("DATABASE_URL", "postgresql://database-url/db2")

	assert.Equal(t, "postgresql://database-url/db2", connectionStringFromEnv())
}

func TestConnectionStringFromEnv_Empty(t *testing.T) {
	t.Setenv("MIQA_CONNECTION_STRING", "")
	t.Setenv("DATABASE_URL", "")

	assert.Empty(t, connectionStringFromEnv())
}

func TestResolveTargetDatabase(t *testing.T) {
	tests := []struct {
		name    string
		flagDB  string
		connDB  string
		want    string
		wantErr bool
	}{
		{"flag wins over connection string", "flagdb", "conndb", "flagdb", false},
		{"connection string used without flag", "", "conndb", "conndb", false},
		{"flag alone", "flagdb", "", "flagdb", false},
		{"neither is an error", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTargetDatabase(tt.flagDB, tt.connDB, "geo", false)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, miqa.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadProjectConfig_MissingFileIsNil(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadProjectConfig(false)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
