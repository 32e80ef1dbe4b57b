package main

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"libris/internal/db"
	"libris/internal/middleware"
	"libris/internal/router"
	"libris/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// Start the mail worker early so signup confirmations queue from
	// the first request.
	services.GetMailService()

	// Pull subscribed feeds on a timer so the wire stays fresh.
	services.NewNewswireService(db.DB).StartScheduled(30 * time.Minute)

	// Initialize Gin
	r := gin.Default()
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("libris_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")

	// Middleware
	r.Use(middleware.LoadAccount())

	router.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Libris server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, components...)
		files = append(files, view)
		return files
	}

	// FuncMap
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			case *time.Time:
				if v == nil {
					return ""
				}
				timeVal = *v
			default:
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			switch {
			case seconds < 60:
				return "just now"
			case seconds < 3600:
				return fmt.Sprintf("%dm ago", seconds/60)
			case seconds < 86400:
				return fmt.Sprintf("%dh ago", seconds/3600)
			case seconds < 2592000:
				return fmt.Sprintf("%dd ago", seconds/86400)
			case seconds < 31536000:
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"eq": func(a, b interface{}) bool {
			return a == b
		},
		"gt": func(a, b int) bool {
			return a > b
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	// News desk
	r.AddFromFilesFuncs("news/list.html", funcMap, assemble(templatesDir+"/views/news/list.html")...)
	r.AddFromFilesFuncs("news/detail.html", funcMap, assemble(templatesDir+"/views/news/detail.html")...)
	r.AddFromFilesFuncs("news/create.html", funcMap, assemble(templatesDir+"/views/news/create.html")...)
	r.AddFromFilesFuncs("news/edit.html", funcMap, assemble(templatesDir+"/views/news/edit.html")...)
	// Fragment swapped into the submit form, no layout around it.
	r.AddFromFilesFuncs("news/preview.html", funcMap, templatesDir+"/views/news/preview.html")

	// Articles
	r.AddFromFilesFuncs("article/list.html", funcMap, assemble(templatesDir+"/views/article/list.html")...)
	r.AddFromFilesFuncs("article/detail.html", funcMap, assemble(templatesDir+"/views/article/detail.html")...)
	r.AddFromFilesFuncs("article/create.html", funcMap, assemble(templatesDir+"/views/article/create.html")...)
	r.AddFromFilesFuncs("article/edit.html", funcMap, assemble(templatesDir+"/views/article/edit.html")...)

	// Tips
	r.AddFromFilesFuncs("tip/list.html", funcMap, assemble(templatesDir+"/views/tip/list.html")...)
	r.AddFromFilesFuncs("tip/create.html", funcMap, assemble(templatesDir+"/views/tip/create.html")...)
	r.AddFromFilesFuncs("tip/edit.html", funcMap, assemble(templatesDir+"/views/tip/edit.html")...)

	// Glossary
	r.AddFromFilesFuncs("term/list.html", funcMap, assemble(templatesDir+"/views/term/list.html")...)
	r.AddFromFilesFuncs("term/create.html", funcMap, assemble(templatesDir+"/views/term/create.html")...)
	r.AddFromFilesFuncs("term/edit.html", funcMap, assemble(templatesDir+"/views/term/edit.html")...)

	// Members
	r.AddFromFilesFuncs("user/profile.html", funcMap, assemble(templatesDir+"/views/user/profile.html")...)
	r.AddFromFilesFuncs("user/members.html", funcMap, assemble(templatesDir+"/views/user/members.html")...)

	// Dashboard
	r.AddFromFilesFuncs("dashboard/overview.html", funcMap, assemble(templatesDir+"/views/dashboard/overview.html")...)
	r.AddFromFilesFuncs("dashboard/settings.html", funcMap, assemble(templatesDir+"/views/dashboard/settings.html")...)
	r.AddFromFilesFuncs("notification/list.html", funcMap, assemble(templatesDir+"/views/notification/list.html")...)

	// Moderation
	r.AddFromFilesFuncs("moderation/news.html", funcMap, assemble(templatesDir+"/views/moderation/news.html")...)
	r.AddFromFilesFuncs("wire/index.html", funcMap, assemble(templatesDir+"/views/wire/index.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
