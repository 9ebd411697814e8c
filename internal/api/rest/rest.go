package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	{
		// Discovery endpoints (read only)
		api.GET("/nft-access/:address/:chainId", handler.GetNFTAccess)
		api.GET("/user-assets/:address/:chainId", handler.GetUserAssets)

		// Publication flow
		api.POST("/create-and-publish-nft", handler.CreateAndPublishNFT)
		api.POST("/extract-addresses", handler.ExtractAddresses)
		api.POST("/encrypt-metadata", handler.EncryptMetadata)
		api.POST("/prepare-nft-delete", handler.PrepareNFTDelete)

		// Consumption flow
		api.POST("/consume-asset", handler.ConsumeAsset)
		api.POST("/get-download-url", handler.GetDownloadURL)
	}
}
