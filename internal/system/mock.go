package system

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"
)

// MockCommand records an executed command.
type MockCommand struct {
	Name        string
	Args        []string
	Interactive bool
}

// Line returns the command as a single space-joined string.
func (c MockCommand) Line() string {
	line := c.Name
	for _, a := range c.Args {
		line += " " + a
	}
	return line
}

// MockResponse defines the response for a command.
type MockResponse struct {
	Output []byte
	Err    error
}

// MockExecutor implements CommandExecutor for testing.
//
// Responses are matched against the full command line by longest prefix,
// so "systemctl is-active NetworkManager" wins over "systemctl is-active".
// Queued responses for the same pattern are consumed in order, which lets
// tests model a status probe that changes answer between polls.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []MockCommand

	// Responses maps command-line prefixes to responses.
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// MissingBinaries makes LookPath fail for the named commands.
	MissingBinaries map[string]bool

	queues map[string][]MockResponse
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Responses:       make(map[string]MockResponse),
		MissingBinaries: make(map[string]bool),
		queues:          make(map[string][]MockResponse),
	}
}

// AddResponse adds a response for a command-line prefix.
func (m *MockExecutor) AddResponse(pattern string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Output: output, Err: err}
}

// QueueResponse appends a one-shot response for a command-line prefix.
// Queued responses take priority over AddResponse entries until drained.
func (m *MockExecutor) QueueResponse(pattern string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[pattern] = append(m.queues[pattern], MockResponse{Output: output, Err: err})
}

// CommandLines returns the recorded commands as joined strings.
func (m *MockExecutor) CommandLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]string, len(m.Commands))
	for i, c := range m.Commands {
		lines[i] = c.Line()
	}
	return lines
}

func (m *MockExecutor) respond(cmd MockCommand) MockResponse {
	line := cmd.Line()

	// Longest matching prefix wins; queued responses first.
	best := ""
	for pattern, queue := range m.queues {
		if len(queue) > 0 && matchesPrefix(line, pattern) && len(pattern) > len(best) {
			best = pattern
		}
	}
	if best != "" {
		resp := m.queues[best][0]
		m.queues[best] = m.queues[best][1:]
		return resp
	}
	for pattern := range m.Responses {
		if matchesPrefix(line, pattern) && len(pattern) > len(best) {
			best = pattern
		}
	}
	if best != "" {
		return m.Responses[best]
	}
	return m.DefaultResponse
}

// matchesPrefix reports whether pattern is a whole-token prefix of line.
func matchesPrefix(line, pattern string) bool {
	if len(pattern) > len(line) {
		return false
	}
	if line[:len(pattern)] != pattern {
		return false
	}
	return len(line) == len(pattern) || line[len(pattern)] == ' '
}

func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := MockCommand{Name: name, Args: args}
	m.Commands = append(m.Commands, cmd)
	resp := m.respond(cmd)
	return resp.Output, resp.Err
}

func (m *MockExecutor) ExecuteInteractive(ctx context.Context, name string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := MockCommand{Name: name, Args: args, Interactive: true}
	m.Commands = append(m.Commands, cmd)
	return m.respond(cmd).Err
}

func (m *MockExecutor) LookPath(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MissingBinaries[name] {
		return "", fs.ErrNotExist
	}
	return "/usr/bin/" + name, nil
}

// MockChown records a ChownAll call.
type MockChown struct {
	Path string
	UID  int
	GID  int
}

// MockFS implements FileSystem for testing.
type MockFS struct {
	mu    sync.RWMutex
	files map[string]*mockFile
	dirs  map[string]bool

	// Chowns records ChownAll calls in order.
	Chowns []MockChown

	// Error injection
	ReadFileErr  error
	WriteFileErr error
	MkdirAllErr  error
	ChownErr     error
}

type mockFile struct {
	data []byte
	mode fs.FileMode
}

// NewMockFS creates a new MockFS with an empty filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files: make(map[string]*mockFile),
		dirs:  make(map[string]bool),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFS) AddFile(path string, data []byte, mode fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &mockFile{data: data, mode: mode}
	dir := filepath.Dir(path)
	for dir != "." && dir != "/" {
		m.dirs[dir] = true
		dir = filepath.Dir(dir)
	}
}

// AddDir adds a directory to the mock filesystem.
func (m *MockFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
}

// GetFile returns the contents of a file in the mock filesystem.
func (m *MockFS) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, false
	}
	return f.data, true
}

// FileMode returns the mode of a file in the mock filesystem.
func (m *MockFS) FileMode(path string) (fs.FileMode, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return 0, false
	}
	return f.mode, true
}

func (m *MockFS) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return f.data, nil
}

func (m *MockFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if m.WriteFileErr != nil {
		return m.WriteFileErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &mockFile{data: data, mode: perm}
	return nil
}

func (m *MockFS) Stat(path string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.files[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), size: int64(len(f.data)), mode: f.mode}, nil
	}
	if _, ok := m.dirs[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), isDir: true, mode: fs.ModeDir | 0755}, nil
	}
	return nil, fs.ErrNotExist
}

func (m *MockFS) MkdirAll(path string, perm fs.FileMode) error {
	if m.MkdirAllErr != nil {
		return m.MkdirAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current := path
	for current != "." && current != "/" {
		m.dirs[current] = true
		current = filepath.Dir(current)
	}
	return nil
}

func (m *MockFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, fileOk := m.files[path]
	_, dirOk := m.dirs[path]
	return fileOk || dirOk
}

func (m *MockFS) ReadDir(path string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.dirs[path]; !ok {
		return nil, fs.ErrNotExist
	}
	entries := make(map[string]fs.DirEntry)
	for p, f := range m.files {
		if filepath.Dir(p) == path {
			name := filepath.Base(p)
			entries[name] = &mockDirEntry{name: name, mode: f.mode}
		}
	}
	for p := range m.dirs {
		if filepath.Dir(p) == path {
			name := filepath.Base(p)
			entries[name] = &mockDirEntry{name: name, isDir: true, mode: fs.ModeDir | 0755}
		}
	}
	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}

func (m *MockFS) Chmod(path string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[path]; ok {
		f.mode = mode
		return nil
	}
	if _, ok := m.dirs[path]; ok {
		return nil
	}
	return fs.ErrNotExist
}

func (m *MockFS) ChownAll(path string, uid, gid int) error {
	if m.ChownErr != nil {
		return m.ChownErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chowns = append(m.Chowns, MockChown{Path: path, UID: uid, GID: gid})
	return nil
}

// mockFileInfo implements fs.FileInfo for testing.
type mockFileInfo struct {
	name  string
	size  int64
	mode  fs.FileMode
	isDir bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return time.Now() }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry for testing.
type mockDirEntry struct {
	name  string
	mode  fs.FileMode
	isDir bool
}

func (m *mockDirEntry) Name() string      { return m.name }
func (m *mockDirEntry) IsDir() bool       { return m.isDir }
func (m *mockDirEntry) Type() fs.FileMode { return m.mode.Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) {
	return &mockFileInfo{name: m.name, mode: m.mode, isDir: m.isDir}, nil
}
