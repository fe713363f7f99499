package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"estada-feliz/internal/hotel"
	"estada-feliz/internal/theme"
)

const appName = "Estada Feliz"

// render assembles a page, applies the theme from the request cookies to its
// body and writes it with status.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, user *hotel.User, flashes []Flash, content ...g.Node) {
	doc := newDocument(r)
	applier := theme.NewApplier(doc, doc, theme.WithObserver(h.metrics.themeApplied))
	applier.Bind(&doc.ready)

	flashes = append(h.takeFlashes(w, r), flashes...)
	header := navigation(user)
	main := html.Main(
		g.Map(flashes, flashNode),
		g.Group(content),
	)
	doc.ready.Fire()

	page := html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(g.Textf("%s · %s", title, appName)),
				html.Link(html.Rel("stylesheet"), html.Href("/static/theme.css")),
			),
			html.Body(
				html.Class(doc.class),
				header,
				main,
			),
		),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		h.logger.Error("render failed", "event", "render_failed", "path", r.URL.Path, "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func navigation(user *hotel.User) g.Node {
	if user == nil {
		return html.Header(html.Nav(html.A(html.Href("/login"), g.Text(appName))))
	}
	links := []g.Node{html.A(html.Href("/"), g.Text(appName))}
	if user.Profile.In(hotel.ProfileAdministrator, hotel.ProfileReceptionist) {
		links = append(links, html.A(html.Href("/reservations"), g.Text("Reservations")))
	}
	if user.Profile.In(hotel.ProfileAdministrator, hotel.ProfileHousekeeper) {
		links = append(links, html.A(html.Href("/rooms"), g.Text("Rooms")))
	}
	if user.Profile == hotel.ProfileGuest {
		links = append(links, html.A(html.Href("/my-reservations"), g.Text("My reservations")))
	}
	for _, v := range theme.Variants() {
		links = append(links, html.A(html.Class("theme-link"), html.Href("/theme/"+string(v)), g.Text(string(v))))
	}
	links = append(links,
		html.Span(g.Textf("%s (%s)", user.Name, user.Profile)),
		html.A(html.Href("/logout"), g.Text("Log out")),
	)
	return html.Header(html.Nav(links...))
}

func flashNode(f Flash) g.Node {
	return html.Div(html.Class("flash flash-"+f.Category), html.Role("alert"), g.Text(f.Message))
}

func loginContent(email string) g.Node {
	return html.Section(html.Class("card"),
		html.H1(g.Text("Log in")),
		g.El("form", html.Method("post"), html.Action("/login"),
			field("Email", html.Input(html.Type("email"), html.Name("email"), html.ID("email"), html.Value(email), html.Required())),
			field("Password", html.Input(html.Type("password"), html.Name("password"), html.ID("password"), html.Required())),
			html.Button(html.Type("submit"), g.Text("Log in")),
		),
	)
}

func homeContent(user hotel.User) g.Node {
	return html.Section(html.Class("card"),
		html.H1(g.Textf("Welcome, %s", user.Name)),
		html.P(g.Textf("You are signed in as %s.", user.Profile)),
	)
}

func notFoundContent() g.Node {
	return html.Section(html.Class("card"),
		html.H1(g.Text("Page not found")),
		html.P(html.A(html.Href("/"), g.Text("Back to the desk"))),
	)
}

func field(label string, input g.Node) g.Node {
	return html.P(g.El("label", g.Text(label), input))
}

func reservationsContent(checkIn, checkOut string, available []hotel.Room, rows []hotel.Reservation) g.Node {
	return g.Group{
		html.Section(html.Class("card"),
			html.H1(g.Text("Availability")),
			g.El("form", html.Method("get"), html.Action("/reservations"),
				field("Check-in", html.Input(html.Type("date"), html.Name("checkin"), html.Value(checkIn))),
				field("Check-out", html.Input(html.Type("date"), html.Name("checkout"), html.Value(checkOut))),
				html.Button(html.Type("submit"), g.Text("Search")),
			),
			g.If(len(available) == 0, html.P(g.Text("No rooms are free for these dates."))),
			g.If(len(available) > 0,
				g.El("form", html.Method("post"), html.Action("/reservations"),
					html.Input(html.Type("hidden"), html.Name("checkin"), html.Value(checkIn)),
					html.Input(html.Type("hidden"), html.Name("checkout"), html.Value(checkOut)),
					field("Room", html.Select(html.Name("room"),
						g.Map(available, func(room hotel.Room) g.Node {
							return html.Option(html.Value(room.Number),
								g.Textf("%s · %d guests · %s/night", room.Number, room.Capacity, money(room.NightlyRate)))
						}),
					)),
					field("Guest", html.Input(html.Type("text"), html.Name("guest"), html.MaxLength("150"), html.Required())),
					html.Button(html.Type("submit"), g.Text("Book")),
				),
			),
		),
		html.Section(html.Class("card"),
			html.H2(g.Text("Reservations")),
			reservationTable(rows, true),
		),
	}
}

func myReservationsContent(rows []hotel.Reservation) g.Node {
	return html.Section(html.Class("card"),
		html.H1(g.Text("My reservations")),
		reservationTable(rows, false),
	)
}

func reservationTable(rows []hotel.Reservation, manage bool) g.Node {
	if len(rows) == 0 {
		return html.P(g.Text("No reservations yet."))
	}
	return html.Table(
		html.THead(html.Tr(
			html.Th(g.Text("#")), html.Th(g.Text("Room")), html.Th(g.Text("Guest")),
			html.Th(g.Text("Check-in")), html.Th(g.Text("Check-out")), html.Th(g.Text("Nights")),
			html.Th(g.Text("Status")), html.Th(g.Text("Total")),
			g.If(manage, html.Th()),
		)),
		html.TBody(g.Map(rows, func(res hotel.Reservation) g.Node {
			return html.Tr(
				html.Td(g.Text(strconv.FormatInt(res.ID, 10))),
				html.Td(g.Text(res.Room)),
				html.Td(g.Text(res.Guest)),
				html.Td(g.Text(res.CheckIn)),
				html.Td(g.Text(res.CheckOut)),
				html.Td(g.Text(strconv.Itoa(res.Nights()))),
				html.Td(g.Text(string(res.Status))),
				html.Td(g.Text(money(res.Total))),
				g.If(manage, html.Td(
					g.El("form", html.Method("post"), html.Action(fmt.Sprintf("/reservations/%d/delete", res.ID)),
						html.Button(html.Type("submit"), g.Text("Delete")),
					),
				)),
			)
		})),
	)
}

func roomsContent(rooms []hotel.Room) g.Node {
	return html.Section(html.Class("card"),
		html.H1(g.Text("Rooms")),
		html.Table(
			html.THead(html.Tr(
				html.Th(g.Text("Room")), html.Th(g.Text("Capacity")), html.Th(g.Text("Status")), html.Th(),
			)),
			html.TBody(g.Map(rooms, func(room hotel.Room) g.Node {
				return html.Tr(
					g.If(room.Status == hotel.RoomDirty, html.Class("flash-danger")),
					html.Td(g.Text(room.Number)),
					html.Td(g.Text(strconv.Itoa(room.Capacity))),
					html.Td(g.Text(string(room.Status))),
					html.Td(g.El("form", html.Method("post"), html.Action("/rooms"),
						html.Input(html.Type("hidden"), html.Name("room"), html.Value(room.Number)),
						html.Select(html.Name("status"),
							g.Map(hotel.RoomStatuses(), func(s hotel.RoomStatus) g.Node {
								return html.Option(html.Value(string(s)), g.If(s == room.Status, html.Selected()), g.Text(string(s)))
							}),
						),
						html.Button(html.Type("submit"), g.Text("Update")),
					)),
				)
			})),
		),
	)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
