package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fastcart/fastcart/internal/domain/order"
	"github.com/fastcart/fastcart/internal/service"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Register(r gin.IRouter) {
	orders := r.Group("/orders")
	{
		orders.POST("/", h.create)
		orders.GET("/", h.list)
		orders.GET("/:id", h.get)
		orders.PUT("/:id", h.update)
		orders.DELETE("/:id", h.delete)
	}
}

type updateOrderRequest struct {
	ProductID *string          `json:"product_id"`
	Price     *decimal.Decimal `json:"price"`
	Fee       *decimal.Decimal `json:"fee"`
	Total     *decimal.Decimal `json:"total"`
	Quantity  *int64           `json:"quantity"`
	Status    *order.Status    `json:"status"`
}

func (h *OrderHandler) create(c *gin.Context) {
	var req order.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.svc.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, o)
}

func (h *OrderHandler) get(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	o, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, o)
}

func (h *OrderHandler) list(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, orders)
}

func (h *OrderHandler) update(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req updateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.svc.UpdateOrder(c.Request.Context(), id, &order.UpdateOrderCommand{
		ProductID: req.ProductID,
		Price:     req.Price,
		Fee:       req.Fee,
		Total:     req.Total,
		Quantity:  req.Quantity,
		Status:    req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, o)
}

func (h *OrderHandler) delete(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	o, err := h.svc.DeleteOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, o)
}
