package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/geo"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/session"
)

func main() {
	config.Load()

	if config.AppEnv.APIBase == "" {
		log.Fatal("API_BASE is required")
	}

	client := backend.New(config.AppEnv.APIBase, config.AppEnv.HTTPTimeout, config.AppEnv.PlaceholderImage)
	sess := session.Load(config.AppEnv.SessionFile)
	geoClient := geo.NewClient(config.AppEnv.GeocodeBase, config.AppEnv.PlacesBase, config.AppEnv.HTTPTimeout)
	searcher := geo.NewCitySearcher(geoClient, config.AppEnv.CitySearchDebounce)
	drafts := handlers.NewDraftStore()

	log.Println("storefront gateway for backend:", config.AppEnv.APIBase)

	r := gin.Default()

	r.GET("/catalog", handlers.GetCatalog(client))
	r.GET("/catalog/:id", handlers.GetProductDetail(client))
	r.GET("/vocabulary", handlers.GetVocabulary())

	r.POST("/auth/login", handlers.Login(client, sess))
	r.POST("/auth/register", handlers.Register(client))
	r.GET("/auth/me", handlers.GetMe(client, sess))
	r.POST("/auth/logout", handlers.Logout(sess))

	r.GET("/locations/search", handlers.SearchLocations(searcher))
	r.GET("/locations/reverse", handlers.ReverseLocation(geoClient))

	draft := r.Group("/drafts")
	{
		draft.POST("", handlers.CreateDraft(drafts, geoClient))
		draft.GET("/:id", handlers.GetDraft(drafts))
		draft.PATCH("/:id", handlers.UpdateDraft(drafts))
		draft.POST("/:id/advance", handlers.AdvanceDraft(drafts))
		draft.POST("/:id/retreat", handlers.RetreatDraft(drafts))
		draft.POST("/:id/images", handlers.UploadDraftImages(drafts, config.AppEnv.PendingAssetDir))
		draft.DELETE("/:id/images/:index", handlers.RemoveDraftImage(drafts, config.AppEnv.PendingAssetDir))
		draft.PUT("/:id/images/primary", handlers.SetPrimaryImage(drafts))
		draft.POST("/:id/accessories", handlers.AddDraftListItem(drafts, "accessories"))
		draft.DELETE("/:id/accessories/:index", handlers.RemoveDraftListItem(drafts, "accessories"))
		draft.POST("/:id/exchange-preferences", handlers.AddDraftListItem(drafts, "exchange-preferences"))
		draft.DELETE("/:id/exchange-preferences/:index", handlers.RemoveDraftListItem(drafts, "exchange-preferences"))

		draft.POST("/:id/submit",
			middleware.RequireSession(sess),
			handlers.SubmitDraft(drafts, client, sess, config.AppEnv.PendingAssetDir),
		)
	}

	r.Run(":" + config.AppEnv.Port)
}
