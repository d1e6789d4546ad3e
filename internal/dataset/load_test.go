package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/station-linker/internal/fetcher"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		Generation: writeFixture(t, dir, "gen.csv", "DUID,Energy,Power\nU1,100,4.2\nU2,50,2\n"),
		Mapping:    writeFixture(t, dir, "map.csv", "DUID,Fuel,Region,Station\nU1,Solar,SA1,Bungala One\n"),
		Registry:   writeFixture(t, dir, "reg.csv", "Name,Cap,Date\nBungala One - SA,135,12/03/2018\n"),
	}

	tables, err := NewLoader(fetcher.NewOpener(nil), fetcher.TableOptions{}).Load(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, tables.Generation, 2)
	assert.Len(t, tables.Mapping, 1)
	require.Len(t, tables.Registry, 1)
	assert.Equal(t, "Bungala One - SA", tables.Registry[0].StationNameRaw)
}

func TestLoader_Load_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		Generation: writeFixture(t, dir, "gen.csv", "DUID,Energy,Power\nU1,100,4.2\n"),
		Mapping:    filepath.Join(dir, "absent.csv"),
		Registry:   writeFixture(t, dir, "reg.csv", "Name,Cap,Date\n"),
	}

	_, err := NewLoader(fetcher.NewOpener(nil), fetcher.TableOptions{}).Load(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.csv")
}

func TestLoader_Load_EmptySourcePath(t *testing.T) {
	_, err := NewLoader(fetcher.NewOpener(nil), fetcher.TableOptions{}).Load(context.Background(), Sources{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source path is required")
}

func TestLoader_Load_BindErrorNamesSource(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		Generation: writeFixture(t, dir, "gen.csv", "DUID\nU1\n"),
		Mapping:    writeFixture(t, dir, "map.csv", "a,b,c,d\n"),
		Registry:   writeFixture(t, dir, "reg.csv", "a,b,c\n"),
	}

	_, err := NewLoader(fetcher.NewOpener(nil), fetcher.TableOptions{}).Load(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gen.csv")
	assert.Contains(t, err.Error(), "generation table has 1 columns")
}
