package mockapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func productParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || id <= 0 {
		reject(c, http.StatusBadRequest, "Invalid product id")
		return 0, false
	}
	return id, true
}

func findItem(items []*item, productID int64) (int, *item) {
	for i, it := range items {
		if it.ProductID == productID {
			return i, it
		}
	}
	return -1, nil
}

func (s *Server) nextItemID() string {
	s.seq++
	return strconv.FormatInt(s.seq, 10)
}

func (s *Server) listCart(c *gin.Context) {
	s.mu.Lock()
	items := cloneItems(s.carts[bucket(c)])
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (s *Server) countCart(c *gin.Context) {
	s.mu.Lock()
	count := len(s.carts[bucket(c)])
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (s *Server) addCart(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Quantity  int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "product_id is required")
		return
	}
	req.Quantity = max(req.Quantity, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[req.ProductID]
	if !ok {
		reject(c, http.StatusBadRequest, "Product not found")
		return
	}
	key := bucket(c)
	_, it := findItem(s.carts[key], req.ProductID)
	want := req.Quantity
	if it != nil {
		want += it.Quantity
	}
	if p.Stock > 0 && want > p.Stock {
		reject(c, http.StatusBadRequest, "Only "+strconv.Itoa(p.Stock)+" left in stock")
		return
	}

	if it == nil {
		it = &item{ID: s.nextItemID(), ProductID: p.ID, Name: p.Name, Price: p.Price}
		s.carts[key] = append(s.carts[key], it)
	}
	it.Quantity = want
	c.JSON(http.StatusOK, gin.H{"success": true, "item": *it, "cart_count": len(s.carts[key])})
}

func (s *Server) updateCart(c *gin.Context) {
	productID, ok := productParam(c)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "quantity is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := bucket(c)
	i, it := findItem(s.carts[key], productID)
	if it == nil {
		reject(c, http.StatusNotFound, "Item not found in cart")
		return
	}
	if req.Quantity <= 0 {
		s.carts[key] = append(s.carts[key][:i], s.carts[key][i+1:]...)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if p, ok := s.products[productID]; ok && p.Stock > 0 && req.Quantity > p.Stock {
		reject(c, http.StatusBadRequest, "Only "+strconv.Itoa(p.Stock)+" left in stock")
		return
	}
	it.Quantity = req.Quantity
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) removeCart(c *gin.Context) {
	productID, ok := productParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := bucket(c)
	if i, it := findItem(s.carts[key], productID); it != nil {
		s.carts[key] = append(s.carts[key][:i], s.carts[key][i+1:]...)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart_count": len(s.carts[key])})
}

func (s *Server) clearCart(c *gin.Context) {
	s.mu.Lock()
	delete(s.carts, bucket(c))
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func cloneItems(items []*item) []item {
	out := make([]item, 0, len(items))
	for _, it := range items {
		c := *it
		c.Attributes = it.Attributes.Clone()
		out = append(out, c)
	}
	return out
}
