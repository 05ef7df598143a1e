package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Open_ValidDirectory(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()

	d, err := fs.Open(dir)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", dir, err)
	}

	absDir, _ := filepath.Abs(dir)
	if d.Path() != absDir {
		t.Errorf("directory.Path() = %q, want %q", d.Path(), absDir)
	}
}

func TestOSFileSystem_Open_NonexistentPath(t *testing.T) {
	fs := NewOSFileSystem()

	_, err := fs.Open(filepath.Join(t.TempDir(), "nonexistent"))
	if err == nil {
		t.Error("Open(nonexistent) should return error")
	}
}

func TestOSFileSystem_Open_FileNotDirectory(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "dataset_description.json")
	os.WriteFile(filePath, []byte("{}"), 0644)

	fs := NewOSFileSystem()

	_, err := fs.Open(filePath)
	if err == nil {
		t.Error("Open(file) should return error")
	}
}

func TestOSFileSystem_ReadFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sub-01_sample.json")
	expected := `{"Site": "yard"}`
	os.WriteFile(filePath, []byte(expected), 0644)

	fs := NewOSFileSystem()

	data, err := fs.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != expected {
		t.Errorf("ReadFile() = %q, want %q", string(data), expected)
	}
}

func TestOSFileSystem_ReadFile_Nonexistent(t *testing.T) {
	fs := NewOSFileSystem()

	_, err := fs.ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("ReadFile(nonexistent) should return error")
	}
}

func TestOSFileSystem_Stat_File(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sub-01_sample.json")
	os.WriteFile(filePath, []byte("{}"), 0644)

	fs := NewOSFileSystem()

	info, err := fs.Stat(filePath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.IsDir() {
		t.Error("Stat(file) should not be a directory")
	}
	if info.Name() != "sub-01_sample.json" {
		t.Errorf("Stat().Name() = %q, want %q", info.Name(), "sub-01_sample.json")
	}
}

func TestOSFileSystem_Stat_Directory(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()

	info, err := fs.Stat(dir)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Error("Stat(dir) should be a directory")
	}
}

func TestOSFileSystem_Stat_Nonexistent(t *testing.T) {
	fs := NewOSFileSystem()

	_, err := fs.Stat(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Error("Stat(nonexistent) should return error")
	}
}

func TestOSFileSystem_WriteFile_MkdirAll(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()

	sub := filepath.Join(dir, "sub-01", "anat")
	if err := fs.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	filePath := filepath.Join(sub, "sub-01_sample.json")
	if err := fs.WriteFile(filePath, []byte(`{"Site": "yard"}`), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := fs.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"Site": "yard"}` {
		t.Errorf("round trip = %q", string(data))
	}
}

func TestOSFileSystem_Walk(t *testing.T) {
	dir := t.TempDir()

	// Create a tree:
	//   dir/
	//     dataset_description.json
	//     sub-01/
	//       sub-01_sample.json
	sub := filepath.Join(dir, "sub-01")
	os.Mkdir(sub, 0755)
	os.WriteFile(filepath.Join(dir, "dataset_description.json"), []byte("{}"), 0644)
	os.WriteFile(filepath.Join(sub, "sub-01_sample.json"), []byte("{}"), 0644)

	fs := NewOSFileSystem()
	d, err := fs.Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var files []string
	err = d.Walk(func(f File, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !f.Info().IsDir() {
			files = append(files, f.RelativePath())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("Walk found %d files, want 2: %v", len(files), files)
	}

	// Verify relative paths use OS separator
	found := map[string]bool{}
	for _, f := range files {
		found[filepath.ToSlash(f)] = true
	}

	if !found["dataset_description.json"] {
		t.Error("Walk did not find dataset_description.json")
	}
	if !found["sub-01/sub-01_sample.json"] {
		t.Error("Walk did not find sub-01/sub-01_sample.json")
	}
}

func TestOSFileSystem_Walk_SkipDir(t *testing.T) {
	dir := t.TempDir()

	code := filepath.Join(dir, "code")
	sub := filepath.Join(dir, "sub-01")
	os.Mkdir(code, 0755)
	os.Mkdir(sub, 0755)
	os.WriteFile(filepath.Join(code, "analyze.sh"), []byte("#!/bin/sh"), 0644)
	os.WriteFile(filepath.Join(sub, "sub-01_sample.json"), []byte("{}"), 0644)

	fs := NewOSFileSystem()
	d, err := fs.Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var files []string
	err = d.Walk(func(f File, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if f.Info().IsDir() {
			if filepath.ToSlash(f.RelativePath()) == "code" {
				return SkipDir
			}
			return nil
		}
		files = append(files, filepath.ToSlash(f.RelativePath()))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	if len(files) != 1 || files[0] != "sub-01/sub-01_sample.json" {
		t.Errorf("Walk with SkipDir = %v, want only sub-01/sub-01_sample.json", files)
	}
}

func TestOSFile_ReadContent(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sub-01_sample.json")
	expected := `{"Site": "yard", "Depth": 3}`
	os.WriteFile(filePath, []byte(expected), 0644)

	fs := NewOSFileSystem()
	d, err := fs.Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var fileContent string
	d.Walk(func(f File, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if f.RelativePath() == "sub-01_sample.json" {
			data, err := f.ReadContent()
			if err != nil {
				t.Fatalf("ReadContent() error = %v", err)
			}
			fileContent = string(data)
		}
		return nil
	})

	if fileContent != expected {
		t.Errorf("ReadContent() = %q, want %q", fileContent, expected)
	}
}
