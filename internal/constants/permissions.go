package constants

import "os"

// Права доступа к каталогам.
const (
	// DirPermStandard - стандартные права каталога (owner rwx, group r-x).
	DirPermStandard os.FileMode = 0750
)

// Права доступа к файлам.
const (
	// FilePermReadWrite - стандартные права файла (owner rw, group r, other r).
	FilePermReadWrite os.FileMode = 0644

	// FilePermExec - права исполняемого файла.
	FilePermExec os.FileMode = 0755
)
