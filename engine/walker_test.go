package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/franksops/shuttle/provider"
)

type mockFileInfo struct {
	name    string
	size    int64
	isDir   bool
	modTime time.Time
}

func (m mockFileInfo) Name() string       { return m.name }
func (m mockFileInfo) Size() int64        { return m.size }
func (m mockFileInfo) IsDir() bool        { return m.isDir }
func (m mockFileInfo) ModTime() time.Time { return m.modTime }

type mockProvider struct {
	files map[string]mockFileInfo
	dirs  map[string][]mockFileInfo
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		files: make(map[string]mockFileInfo),
		dirs:  make(map[string][]mockFileInfo),
	}
}

func (m *mockProvider) addFile(dir, name string, size int64) {
	m.dirs[dir] = append(m.dirs[dir], mockFileInfo{name: name, size: size})
	m.files[dir+"/"+name] = mockFileInfo{name: name, size: size}
}

func (m *mockProvider) addDir(parent, name string) {
	m.dirs[parent] = append(m.dirs[parent], mockFileInfo{name: name, isDir: true})
	if _, ok := m.dirs[parent+"/"+name]; !ok {
		m.dirs[parent+"/"+name] = nil
	}
}

func (m *mockProvider) Stat(ctx context.Context, path string) (provider.FileInfo, error) {
	if info, ok := m.files[path]; ok {
		return info, nil
	}
	if _, ok := m.dirs[path]; ok {
		return mockFileInfo{name: path, isDir: true}, nil
	}
	return nil, fmt.Errorf("file not found: %s", path)
}

func (m *mockProvider) List(ctx context.Context, path string) ([]provider.FileInfo, error) {
	files, ok := m.dirs[path]
	if !ok {
		return nil, fmt.Errorf("directory not found: %s", path)
	}
	res := make([]provider.FileInfo, len(files))
	for i, f := range files {
		res[i] = f
	}
	return res, nil
}

func (m *mockProvider) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	info, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(make([]byte, info.size))), nil
}

func (m *mockProvider) OpenWrite(ctx context.Context, path string) (io.WriteCloser, error) {
	return nil, fmt.Errorf("mock provider is read-only")
}

func TestEnumerateFiles_FlatDirectory(t *testing.T) {
	m := newMockProvider()
	m.addFile("/src", "a.bin", 100)
	m.addFile("/src", "b.bin", 200)

	files, total, err := EnumerateFiles(context.Background(), m, "/src", Filter{})
	if err != nil {
		t.Fatalf("EnumerateFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if total != 300 {
		t.Errorf("expected total 300, got %d", total)
	}
}

func TestEnumerateFiles_DeepTree(t *testing.T) {
	m := newMockProvider()
	m.addFile("/src", "root.bin", 1)
	m.addDir("/src", "sub")
	m.addFile("/src/sub", "nested.bin", 2)
	m.addDir("/src/sub", "deeper")
	m.addFile("/src/sub/deeper", "leaf.bin", 4)

	files, total, err := EnumerateFiles(context.Background(), m, "/src", Filter{})
	if err != nil {
		t.Fatalf("EnumerateFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %+v", len(files), files)
	}
	if total != 7 {
		t.Errorf("expected total 7, got %d", total)
	}

	found := make(map[string]int64)
	for _, f := range files {
		found[f.RelPath] = f.Size
	}
	if found["sub/deeper/leaf.bin"] != 4 {
		t.Errorf("expected nested relative path, got %+v", found)
	}
}

func TestEnumerateFiles_AppliesFilter(t *testing.T) {
	m := newMockProvider()
	m.addFile("/src", "release-1.0.tar.gz", 10)
	m.addFile("/src", "debug.log", 20)
	m.addDir("/src", "sub")
	m.addFile("/src/sub", "release-notes.tar.gz", 40)

	files, total, err := EnumerateFiles(context.Background(), m, "/src", Filter{Extensions: []string{"tar.gz"}})
	if err != nil {
		t.Fatalf("EnumerateFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 filtered files, got %d", len(files))
	}
	if total != 50 {
		t.Errorf("expected filtered total 50, got %d", total)
	}
}

func TestEnumerateFiles_MissingDirectory(t *testing.T) {
	m := newMockProvider()
	if _, _, err := EnumerateFiles(context.Background(), m, "/nope", Filter{}); err == nil {
		t.Errorf("expected an error for a missing directory")
	}
}

func TestEnumerateFiles_CancelledContext(t *testing.T) {
	m := newMockProvider()
	m.addFile("/src", "a.bin", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := EnumerateFiles(ctx, m, "/src", Filter{}); err == nil {
		t.Errorf("expected a context error")
	}
}
