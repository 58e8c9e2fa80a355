package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/evercart/docs"
	"github.com/MikeMC777/evercart/internal/httpx"
	"github.com/MikeMC777/evercart/internal/order"
	"github.com/MikeMC777/evercart/internal/payment"
)

type routerDeps struct {
	orders         *order.Service
	payments       *payment.Service
	adminTokenHash string
	corsOrigins    []string
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), httpx.CORS(d.corsOrigins), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/orders", createOrderHandler(d.orders))
	r.GET("/orders", listOrdersHandler(d.orders))
	r.GET("/orders/:id", getOrderHandler(d.orders))

	pay := r.Group("/payment")
	pay.POST("/create-order", createPaymentIntentHandler(d.payments))
	pay.POST("/verify", verifyPaymentHandler(d.payments))
	pay.POST("/fail", failPaymentHandler(d.payments))

	admin := r.Group("/admin", httpx.AdminOnly(d.adminTokenHash))
	admin.GET("/orders", adminListOrdersHandler(d.orders))
	admin.GET("/orders/:id", adminGetOrderHandler(d.orders))
	admin.PUT("/orders/:id/status", updateOrderStatusHandler(d.orders))

	return r
}
