package router

import (
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/handler"
	"tijuanashop/internal/adapter/api/middleware"
)

func SetupProductRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	productHandler := handler.GetProductHandler()

	products := e.Group("/v1/products")
	products.Use(authMiddleware.Optional)
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)

	e.GET("/v1/categories", productHandler.ListCategories)

	myProducts := e.Group("/v1/my-products")
	myProducts.Use(authMiddleware.Authenticate)
	myProducts.GET("", productHandler.ListMyProducts)
	myProducts.POST("", productHandler.CreateProduct)
	myProducts.PUT("/:id", productHandler.UpdateProduct)
	myProducts.DELETE("/:id", productHandler.DeleteProduct)
}
