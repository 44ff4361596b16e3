package controllers

import (
	"time"

	cartsvc "github.com/wardshop/ward-backend/internal/cart"
	"github.com/wardshop/ward-backend/pkg/db/models"
)

type cartItemResponse struct {
	ProductID int64     `json:"productId"`
	NameEn    string    `json:"nameEn"`
	NameAr    string    `json:"nameAr"`
	Price     string    `json:"price"`
	ImageURL  string    `json:"imageUrl"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

type cartResponse struct {
	UserID      string             `json:"userId"`
	Items       []cartItemResponse `json:"items"`
	TotalItems  int                `json:"totalItems"`
	TotalPrice  string             `json:"totalPrice"`
	LastUpdated time.Time          `json:"lastUpdated"`
}

type syncCartResponse struct {
	Cart   cartResponse         `json:"cart"`
	Report *cartsvc.MergeReport `json:"report"`
}

func newCartResponse(record *models.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(record.Items))
	for i := range record.Items {
		item := record.Items[i]
		items = append(items, cartItemResponse{
			ProductID: item.ProductID,
			NameEn:    item.NameEn,
			NameAr:    item.NameAr,
			Price:     item.Price.StringFixed(2),
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		})
	}
	return cartResponse{
		UserID:      record.UserID.String(),
		Items:       items,
		TotalItems:  record.TotalItems,
		TotalPrice:  record.TotalPrice.StringFixed(2),
		LastUpdated: record.LastUpdated,
	}
}
