package util

import (
	"runtime"
	"strings"
)

// GetPackageName returns the last path element of the calling function's package,
// e.g. "ocr" for chat-captcha/src/pkg/ocr.InitializeConfig.
func GetPackageName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}

	fullName := fn.Name()
	name := fullName[strings.LastIndex(fullName, "/")+1:]
	if dot := strings.Index(name, "."); dot >= 0 {
		name = name[:dot]
	}
	return name
}
