package router

import (
	"libris/internal/handlers"
	"libris/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	newsHandler := handlers.NewNewsHandler()
	articleHandler := handlers.NewArticleHandler()
	tipHandler := handlers.NewTipHandler()
	termHandler := handlers.NewTermHandler()
	commentHandler := handlers.NewCommentHandler()
	accountHandler := handlers.NewAccountHandler()
	notificationHandler := handlers.NewNotificationHandler()
	moderationHandler := handlers.NewModerationHandler()
	wireHandler := handlers.NewWireHandler()
	seoHandler := handlers.NewSEOHandler()

	// Public routes
	r.GET("/", newsHandler.List)                 // approved news desk
	r.GET("/n/:nid", newsHandler.Detail)         // news item with comments
	r.GET("/articles", articleHandler.List)      // member articles
	r.GET("/a/:aid", articleHandler.Detail)      // article with comments
	r.GET("/tips", tipHandler.List)              // reading tips board
	r.GET("/glossary", termHandler.List)         // book-trade glossary
	r.GET("/members", accountHandler.Members)    // who is in the reading room
	r.GET("/u/:handle", accountHandler.Profile)  // public member page

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/confirm/:token", authHandler.Confirm) // mailed confirmation link
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Crawler-facing surface
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.NewsFeed)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/submit", newsHandler.ShowSubmit)
		authorized.POST("/submit", newsHandler.Submit)
		authorized.GET("/submit/preview", newsHandler.Preview)
		authorized.GET("/n/:nid/edit", newsHandler.ShowEdit)
		authorized.POST("/n/:nid/edit", newsHandler.Update)
		authorized.DELETE("/n/:nid", newsHandler.Delete)
		authorized.POST("/n/:nid/comment", newsHandler.CreateComment)

		authorized.GET("/write", articleHandler.ShowCreate)
		authorized.POST("/write", articleHandler.Create)
		authorized.GET("/a/:aid/edit", articleHandler.ShowEdit)
		authorized.POST("/a/:aid/edit", articleHandler.Update)
		authorized.DELETE("/a/:aid", articleHandler.Delete)
		authorized.POST("/a/:aid/comment", articleHandler.CreateComment)

		authorized.GET("/tips/new", tipHandler.ShowCreate)
		authorized.POST("/tips/new", tipHandler.Create)
		authorized.GET("/tips/:id/edit", tipHandler.ShowEdit)
		authorized.POST("/tips/:id/edit", tipHandler.Update)
		authorized.DELETE("/tips/:id", tipHandler.Delete)

		authorized.GET("/glossary/new", termHandler.ShowCreate)
		authorized.POST("/glossary/new", termHandler.Create)
		authorized.GET("/glossary/:id/edit", termHandler.ShowEdit)
		authorized.POST("/glossary/:id/edit", termHandler.Update)

		authorized.DELETE("/comment/:cid", commentHandler.Delete)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
	}

	// Dashboard routes
	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.AuthRequired())
	{
		dashboard.GET("", accountHandler.Dashboard)
		dashboard.GET("/settings", accountHandler.ShowSettings)
		dashboard.POST("/settings", accountHandler.UpdateSettings)
	}

	// Moderation routes. The handlers enforce the approver roles, the
	// group only guarantees somebody is signed in.
	moderation := r.Group("/moderation")
	moderation.Use(middleware.AuthRequired())
	{
		moderation.GET("/news", moderationHandler.Queue)
		moderation.POST("/news/:nid/approve", moderationHandler.Approve)
	}

	// Newswire desk, same crowd as moderation.
	wire := r.Group("/wire")
	wire.Use(middleware.AuthRequired())
	{
		wire.GET("", wireHandler.Index)
		wire.POST("/sources", wireHandler.AddSource)
		wire.POST("/sources/:id/refresh", wireHandler.RefreshSource)
		wire.DELETE("/sources/:id", wireHandler.DeleteSource)
		wire.POST("/items/:id/pickup", wireHandler.Pickup)
	}
}
