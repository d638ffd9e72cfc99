package mail

import (
	"context"
	"fmt"
	"strings"

	"app/internal/domain/model"

	gomail "gopkg.in/gomail.v2"
)

// 出品者への注文通知メールをSMTPで送る。
// 送信失敗は呼び出し側でログして握りつぶす（注文は失敗させない）。
type GomailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewGomailNotifier(host string, port int, user string, password string, from string) *GomailNotifier {
	return &GomailNotifier{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (n *GomailNotifier) NotifyOrderPlaced(ctx context.Context, to string, order model.Order, items []model.OrderItem) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("新しい注文が入りました（注文 #%d）", order.ID))
	m.SetBody("text/html", buildOrderPlacedBody(order, items))

	return n.dialer.DialAndSend(m)
}

func buildOrderPlacedBody(order model.Order, items []model.OrderItem) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<h2>注文 #%d</h2>", order.ID))
	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>商品</th><th>数量</th><th>単価</th></tr>")
	for _, it := range items {
		b.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>%d</td></tr>",
			it.ProductNameSnapshot, it.Quantity, it.UnitPriceSnapshot,
		))
	}
	b.WriteString("</table>")

	b.WriteString(fmt.Sprintf("<p>合計: %d</p>", order.TotalAmount))
	b.WriteString(fmt.Sprintf(
		"<p>配送先: %s, %s, %s %s, %s（%s）</p>",
		order.ShipAddress, order.ShipCity, order.ShipState,
		order.ShipPostalCode, order.ShipCountry, order.ShipPhone,
	))

	return b.String()
}
