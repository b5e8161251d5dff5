package gtfs

// Route is one entry of routes.json
type Route struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
}

// BuildRoutes lists routes in table order with colors as "#"+hex. A missing
// color becomes a bare "#".
func BuildRoutes(feed *Feed) ([]Route, error) {
	routes := []Route{}
	err := feed.eachRow(RoutesFile, []string{"route_id"}, func(r row) error {
		routes = append(routes, Route{
			ID:        r.get("route_id"),
			ShortName: r.get("route_short_name"),
			LongName:  r.get("route_long_name"),
			Color:     hexColor(r.get("route_color")),
			TextColor: hexColor(r.get("route_text_color")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return routes, nil
}

func hexColor(s string) string {
	return "#" + s
}
