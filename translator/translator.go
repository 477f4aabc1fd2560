package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// GetTranslator returns the process-wide translator, creating it on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// Fragment translates a WebGL2 fragment shader to GLSL 4.10 or, for GLES
// contexts, ESSL. Along with the code it returns the uniform names mapped to
// the names the translated code uses.
func Fragment(source string, isGLES bool) (string, map[string]string, error) {
	t, err := GetTranslator()
	if err != nil {
		return "", nil, fmt.Errorf("creating shader translator: %w", err)
	}
	outputFormat := gst.OutputFormatGLSL410
	if isGLES {
		outputFormat = gst.OutputFormatESSL
	}
	fs, err := t.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return "", nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}
	return fs.Code, MappedNames(fs.Variables), nil
}

// MappedNames flattens the translator's variable table to declared name →
// mapped name.
func MappedNames(vars map[string]gst.ShaderVariable) map[string]string {
	names := make(map[string]string, len(vars))
	for name, v := range vars {
		names[name] = v.MappedName
	}
	return names
}
