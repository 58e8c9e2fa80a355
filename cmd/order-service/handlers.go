package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/evercart/internal/httpx"
	"github.com/MikeMC777/evercart/internal/order"
	"github.com/MikeMC777/evercart/internal/payment"
)

// createOrderHandler godoc
// @Summary      Create an order from a cart snapshot
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      order.CreateOrderRequest  true  "order"
// @Success      201   {object}  order.CreateOrderResponse
// @Failure      400   {object}  httpx.HTTPError
// @Failure      500   {object}  httpx.HTTPError
// @Router       /orders [post]
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadJSON(c, err)
			return
		}
		o, err := svc.Create(c.Request.Context(), req.Input())
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, order.CreateOrderResponse{Success: true, OrderID: o.Number, Order: *o})
	}
}

// getOrderHandler godoc
// @Summary      Get one of the caller's orders by order number or id
// @Tags         orders
// @Produce      json
// @Param        id       path      string  true  "order number or id"
// @Param        ownerId  query     string  true  "owner account id"
// @Success      200      {object}  order.Order
// @Failure      403      {object}  httpx.HTTPError
// @Failure      404      {object}  httpx.HTTPError
// @Router       /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetOwned(c.Request.Context(), c.Param("id"), c.Query("ownerId"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// listOrdersHandler godoc
// @Summary      List the caller's orders, newest first
// @Tags         orders
// @Produce      json
// @Param        ownerId  query     string  true   "owner account id"
// @Param        limit    query     int     false  "page size (max 100)"
// @Param        offset   query     int     false  "offset"
// @Success      200      {object}  order.ListResponse
// @Failure      400      {object}  httpx.HTTPError
// @Router       /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		items, err := svc.ListByOwner(c.Request.Context(), c.Query("ownerId"), limit, offset)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Limit: limit, Offset: offset, Items: items})
	}
}

// adminListOrdersHandler godoc
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Security     AdminToken
// @Param        limit   query     int  false  "page size (max 100)"
// @Param        offset  query     int  false  "offset"
// @Success      200     {object}  order.ListResponse
// @Router       /admin/orders [get]
func adminListOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		items, err := svc.List(c.Request.Context(), limit, offset)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Limit: limit, Offset: offset, Items: items})
	}
}

// adminGetOrderHandler godoc
// @Summary      Get any order by order number or id
// @Tags         admin
// @Produce      json
// @Security     AdminToken
// @Param        id   path      string  true  "order number or id"
// @Success      200  {object}  order.Order
// @Failure      404  {object}  httpx.HTTPError
// @Router       /admin/orders/{id} [get]
func adminGetOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateOrderStatusHandler godoc
// @Summary      Move an order along its fulfilment states
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        id    path      string                     true  "order number or id"
// @Param        body  body      order.UpdateStatusRequest  true  "new status"
// @Success      200   {object}  order.Order
// @Failure      400   {object}  httpx.HTTPError
// @Failure      404   {object}  httpx.HTTPError
// @Router       /admin/orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadJSON(c, err)
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.OrderStatus)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// createPaymentIntentHandler godoc
// @Summary      Create a gateway payment intent for an online order
// @Tags         payment
// @Accept       json
// @Produce      json
// @Param        body  body      payment.CreateIntentRequest  true  "intent"
// @Success      200   {object}  payment.Intent
// @Failure      400   {object}  httpx.HTTPError
// @Failure      403   {object}  httpx.HTTPError
// @Failure      404   {object}  httpx.HTTPError
// @Failure      502   {object}  httpx.HTTPError
// @Router       /payment/create-order [post]
func createPaymentIntentHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.CreateIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadJSON(c, err)
			return
		}
		intent, err := svc.CreateIntent(c.Request.Context(), req)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, intent)
	}
}

// verifyPaymentHandler godoc
// @Summary      Verify a signed gateway completion callback
// @Tags         payment
// @Accept       json
// @Produce      json
// @Param        body  body      payment.VerifyRequest  true  "callback fields"
// @Success      200   {object}  payment.VerifyResponse
// @Failure      400   {object}  httpx.HTTPError
// @Failure      403   {object}  httpx.HTTPError
// @Failure      404   {object}  httpx.HTTPError
// @Router       /payment/verify [post]
func verifyPaymentHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadJSON(c, err)
			return
		}
		res, err := svc.Verify(c.Request.Context(), req)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// failPaymentHandler godoc
// @Summary      Record a declined payment so it can be retried
// @Tags         payment
// @Accept       json
// @Param        body  body  payment.FailRequest  true  "failure"
// @Success      204
// @Failure      400   {object}  httpx.HTTPError
// @Failure      403   {object}  httpx.HTTPError
// @Failure      404   {object}  httpx.HTTPError
// @Router       /payment/fail [post]
func failPaymentHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.FailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadJSON(c, err)
			return
		}
		if err := svc.ReportFailure(c.Request.Context(), req); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
