package router

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
)

// LoadTemplates assembles every view with the shared layouts, in the
// layouts + views convention under templatesDir.
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			timeVal, ok := t.(time.Time)
			if !ok {
				return ""
			}

			seconds := int(time.Since(timeVal).Seconds())
			if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	r.AddFromFilesFuncs("feed/index.html", funcMap, assemble(templatesDir+"/views/feed/index.html")...)
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
