package snippet

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VarContext supplies the editor-side facts the built-in variable
// evaluators draw from. The zero value is usable; unset fields resolve
// to empty strings and the clock defaults to time.Now.
type VarContext struct {
	// Filepath is the absolute path of the document being edited.
	Filepath string

	// Directory is the document's directory. Derived from Filepath when
	// empty.
	Directory string

	// WorkspaceName and WorkspaceFolder describe the open workspace.
	WorkspaceName   string
	WorkspaceFolder string

	// SelectedText is the text that was selected when the snippet was
	// triggered.
	SelectedText string

	// CurrentLine is the full text of the line the cursor is on, and
	// CurrentWord the word under the cursor.
	CurrentLine string
	CurrentWord string

	// LineIndex is the zero-based cursor line.
	LineIndex int

	// Now overrides the clock used by the CURRENT_* evaluators.
	Now time.Time

	// Rand overrides the source used by RANDOM and RANDOM_HEX.
	Rand *rand.Rand
}

func (vc *VarContext) now() time.Time {
	if vc == nil || vc.Now.IsZero() {
		return time.Now()
	}
	return vc.Now
}

func (vc *VarContext) intn(n int) int {
	if vc == nil || vc.Rand == nil {
		return rand.Intn(n)
	}
	return vc.Rand.Intn(n)
}

func (vc *VarContext) filename() string {
	if vc == nil {
		return ""
	}
	return filepath.Base(vc.Filepath)
}

type evaluator struct {
	eval func(vc *VarContext) string

	// cache is false for random-value generators, so repeated
	// references inside one body stay independently random.
	cache bool
}

func cached(fn func(vc *VarContext) string) evaluator {
	return evaluator{eval: fn, cache: true}
}

func uncached(fn func(vc *VarContext) string) evaluator {
	return evaluator{eval: fn, cache: false}
}

// evaluators is the fixed catalogue of environment/context variables,
// matching the names editors expose to snippets.
var evaluators = map[string]evaluator{
	"TM_SELECTED_TEXT": cached(func(vc *VarContext) string {
		if vc == nil {
			return ""
		}
		return vc.SelectedText
	}),
	"TM_CURRENT_LINE": cached(func(vc *VarContext) string {
		if vc == nil {
			return ""
		}
		return vc.CurrentLine
	}),
	"TM_CURRENT_WORD": cached(func(vc *VarContext) string {
		if vc == nil {
			return ""
		}
		return vc.CurrentWord
	}),
	"TM_LINE_INDEX": cached(func(vc *VarContext) string {
		if vc == nil {
			return "0"
		}
		return fmt.Sprintf("%d", vc.LineIndex)
	}),
	"TM_LINE_NUMBER": cached(func(vc *VarContext) string {
		if vc == nil {
			return "1"
		}
		return fmt.Sprintf("%d", vc.LineIndex+1)
	}),
	"TM_FILENAME": cached(func(vc *VarContext) string {
		return vc.filename()
	}),
	"TM_FILENAME_BASE": cached(func(vc *VarContext) string {
		name := vc.filename()
		return strings.TrimSuffix(name, filepath.Ext(name))
	}),
	"TM_DIRECTORY": cached(func(vc *VarContext) string {
		if vc == nil {
			return ""
		}
		if vc.Directory != "" {
			return vc.Directory
		}
		if vc.Filepath == "" {
			return ""
		}
		return filepath.Dir(vc.Filepath)
	}),
	"TM_FILEPATH": cached(func(vc *VarContext) string {
		if vc == nil {
			return ""
		}
		return vc.Filepath
	}),
	"WORKSPACE_NAME": cached(func(vc *VarContext) string {
		if vc == nil {
			return ""
		}
		return vc.WorkspaceName
	}),
	"WORKSPACE_FOLDER": cached(func(vc *VarContext) string {
		if vc == nil {
			return ""
		}
		return vc.WorkspaceFolder
	}),

	"CURRENT_YEAR": cached(func(vc *VarContext) string {
		return vc.now().Format("2006")
	}),
	"CURRENT_YEAR_SHORT": cached(func(vc *VarContext) string {
		return vc.now().Format("06")
	}),
	"CURRENT_MONTH": cached(func(vc *VarContext) string {
		return vc.now().Format("01")
	}),
	"CURRENT_MONTH_NAME": cached(func(vc *VarContext) string {
		return vc.now().Format("January")
	}),
	"CURRENT_MONTH_NAME_SHORT": cached(func(vc *VarContext) string {
		return vc.now().Format("Jan")
	}),
	"CURRENT_DATE": cached(func(vc *VarContext) string {
		return vc.now().Format("02")
	}),
	"CURRENT_DAY_NAME": cached(func(vc *VarContext) string {
		return vc.now().Format("Monday")
	}),
	"CURRENT_DAY_NAME_SHORT": cached(func(vc *VarContext) string {
		return vc.now().Format("Mon")
	}),
	"CURRENT_HOUR": cached(func(vc *VarContext) string {
		return vc.now().Format("15")
	}),
	"CURRENT_MINUTE": cached(func(vc *VarContext) string {
		return vc.now().Format("04")
	}),
	"CURRENT_SECOND": cached(func(vc *VarContext) string {
		return vc.now().Format("05")
	}),
	"CURRENT_SECONDS_UNIX": cached(func(vc *VarContext) string {
		return fmt.Sprintf("%d", vc.now().Unix())
	}),

	"RANDOM": uncached(func(vc *VarContext) string {
		return fmt.Sprintf("%06d", vc.intn(1000000))
	}),
	"RANDOM_HEX": uncached(func(vc *VarContext) string {
		return fmt.Sprintf("%06x", vc.intn(1<<24))
	}),
	"UUID": uncached(func(vc *VarContext) string {
		return uuid.NewString()
	}),
}

// IsBuiltinVariable reports whether name is in the evaluator catalogue.
func IsBuiltinVariable(name string) bool {
	_, ok := evaluators[name]
	return ok
}
