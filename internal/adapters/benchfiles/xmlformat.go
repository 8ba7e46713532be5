package benchfiles

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// XMLParser reads XML benchmark instances. Schemas in the wild disagree on
// almost every tag name, so the parser decodes into a generic element tree
// and walks it tolerantly: values may appear as attributes or child elements,
// and containers may be nested under network/graph/data/instance wrappers.
type XMLParser struct{}

func NewXMLParser() *XMLParser {
	return &XMLParser{}
}

func (p *XMLParser) Format() string {
	return FormatXML
}

func (p *XMLParser) Sniff(name string, head []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(string(head)), "<")
}

type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (n *xmlNode) name() string {
	return strings.ToLower(n.XMLName.Local)
}

func (n *xmlNode) child(names ...string) *xmlNode {
	for i := range n.Children {
		for _, want := range names {
			if n.Children[i].name() == want {
				return &n.Children[i]
			}
		}
	}
	return nil
}

func (n *xmlNode) attr(names ...string) (string, bool) {
	for _, a := range n.Attrs {
		key := strings.ToLower(a.Name.Local)
		for _, want := range names {
			if key == want {
				return strings.TrimSpace(a.Value), true
			}
		}
	}
	return "", false
}

// value looks the key up as an attribute first, then as a child element's
// text.
func (n *xmlNode) value(names ...string) (string, bool) {
	if v, ok := n.attr(names...); ok {
		return v, true
	}
	if c := n.child(names...); c != nil {
		return strings.TrimSpace(c.Text), true
	}
	return "", false
}

var xmlWrappers = []string{"network", "graph", "data", "instance", "problem"}

// findContainer returns the first descendant whose name is in names, looking
// through the known wrapper elements.
func findContainer(n *xmlNode, names ...string) *xmlNode {
	for _, want := range names {
		if n.name() == want {
			return n
		}
	}
	if c := n.child(names...); c != nil {
		return c
	}
	for i := range n.Children {
		childName := n.Children[i].name()
		for _, wrapper := range xmlWrappers {
			if childName == wrapper {
				if found := findContainer(&n.Children[i], names...); found != nil {
					return found
				}
			}
		}
	}
	return nil
}

type xmlWaypoint struct {
	id      string
	numID   int64
	numeric bool
	wp      solver.Waypoint
	depot   bool
}

func (p *XMLParser) Parse(name string, data []byte) (*benchmark.Instance, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, shared.NewInputError(name, fmt.Sprintf("invalid XML: %v", err))
	}

	container := findContainer(&root, "nodes", "customers", "vertices", "vertexes")
	if container == nil {
		return nil, shared.NewInputError(name, "no node container found (looked for nodes/customers/vertices)")
	}

	entries := make([]xmlWaypoint, 0, len(container.Children))
	for i := range container.Children {
		el := &container.Children[i]
		entry := parseXMLWaypoint(el, len(entries))
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, shared.NewInputError(name, "node container is empty")
	}

	// Order by numeric id when every id parses; document order otherwise.
	allNumeric := true
	for i := range entries {
		if !entries[i].numeric {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].numID < entries[j].numID })
	}

	depotIndex := -1
	for i := range entries {
		if entries[i].depot {
			depotIndex = i
			break
		}
	}
	if depotIndex < 0 {
		// Smallest id wins; after sorting that is the first entry.
		depotIndex = 0
	}

	waypoints := make([]solver.Waypoint, len(entries))
	for i := range entries {
		waypoints[i] = entries[i].wp
	}
	waypoints[depotIndex].Depot = true
	widenDepotWindow(waypoints, depotIndex)

	vehicles, capacity := parseXMLFleet(&root)
	if vehicles <= 0 {
		vehicles = inferVehicleCount(waypoints, capacity)
	}

	instName, _ := root.value("name")
	if instName == "" {
		if info := root.child("info", "meta"); info != nil {
			instName, _ = info.value("name")
		}
	}
	if instName == "" {
		instName = stem(name)
	}

	return &benchmark.Instance{
		Name:        instName,
		Format:      FormatXML,
		Waypoints:   waypoints,
		DepotIndex:  depotIndex,
		NumVehicles: vehicles,
		Capacity:    capacity,
	}, nil
}

func parseXMLWaypoint(el *xmlNode, position int) xmlWaypoint {
	entry := xmlWaypoint{}

	if id, ok := el.value("id"); ok && id != "" {
		entry.id = id
	} else {
		entry.id = strconv.Itoa(position)
	}
	if n, err := strconv.ParseInt(entry.id, 10, 64); err == nil {
		entry.numID, entry.numeric = n, true
	}

	wp := solver.Waypoint{ID: entry.id, Priority: 1}

	xText, hasX := el.value("cx", "x")
	yText, hasY := el.value("cy", "y")
	if hasX && hasY {
		x, errX := strconv.ParseFloat(xText, 64)
		y, errY := strconv.ParseFloat(yText, 64)
		if errX == nil && errY == nil {
			wp.X, wp.Y = &x, &y
			wp.Location = &shared.Coordinate{Lat: x, Lon: y}
		}
	}
	if wp.Location == nil {
		latText, hasLat := el.value("lat", "latitude")
		lonText, hasLon := el.value("lon", "lng", "longitude")
		if hasLat && hasLon {
			lat, errLat := strconv.ParseFloat(latText, 64)
			lon, errLon := strconv.ParseFloat(lonText, 64)
			if errLat == nil && errLon == nil {
				wp.Location = &shared.Coordinate{Lat: lat, Lon: lon}
			}
		}
	}

	if text, ok := el.value("demand", "quantity"); ok {
		if d, err := parseIntField(text); err == nil && d != 0 {
			wp.Demand = []int64{d}
		}
	}
	if text, ok := el.value("servicetime", "service_time", "service", "serviceduration", "service_duration"); ok {
		if s, err := parseIntField(text); err == nil {
			wp.ServiceTime = s
		}
	}
	wp.TimeWindow = parseXMLWindow(el)

	entry.depot = xmlDepotMarked(el)
	entry.wp = wp
	return entry
}

func parseXMLWindow(el *xmlNode) *solver.TimeWindow {
	source := el
	if tw := el.child("timewindow", "time_window", "tw", "window"); tw != nil {
		source = tw
	}
	startText, hasStart := source.value("start", "ready", "readytime", "ready_time")
	endText, hasEnd := source.value("end", "due", "duedate", "due_date")
	if !hasStart || !hasEnd {
		return nil
	}
	start, errStart := parseIntField(startText)
	end, errEnd := parseIntField(endText)
	if errStart != nil || errEnd != nil {
		return nil
	}
	if end < start {
		start, end = end, start
	}
	return &solver.TimeWindow{Start: start, End: end}
}

func xmlDepotMarked(el *xmlNode) bool {
	if t, ok := el.attr("type"); ok && strings.EqualFold(t, "depot") {
		return true
	}
	if c := el.child("depot", "isdepot"); c != nil {
		return xmlTruthy(c.Text)
	}
	if v, ok := el.attr("depot", "isdepot"); ok {
		return xmlTruthy(v)
	}
	return false
}

// xmlTruthy treats an empty marker element (<depot/>) as true.
func xmlTruthy(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "1", "true", "yes":
		return true
	default:
		return false
	}
}

// parseXMLFleet reads the vehicle count and capacity from the fleet
// container: either one profile element per vehicle group (count + capacity)
// or the values directly on the container.
func parseXMLFleet(root *xmlNode) (int, int64) {
	fleet := findContainer(root, "fleet", "vehicles", "vehicleinfo", "vehicle_info", "resources")
	if fleet == nil {
		return 0, 0
	}

	vehicles := 0
	var capacity int64
	for i := range fleet.Children {
		profile := &fleet.Children[i]
		capText, hasCap := profile.value("capacity", "cap")
		countText, hasCount := profile.value("count", "number", "quantity", "amount")
		if !hasCap && !hasCount && !strings.Contains(profile.name(), "vehicle") {
			continue
		}
		count := 1
		if hasCount {
			if n, err := strconv.Atoi(countText); err == nil && n > 0 {
				count = n
			}
		}
		vehicles += count
		if capacity == 0 && hasCap {
			if c, err := parseIntField(capText); err == nil {
				capacity = c
			}
		}
	}
	if vehicles == 0 || capacity == 0 {
		if text, ok := fleet.value("count", "number", "quantity"); ok {
			if n, err := strconv.Atoi(text); err == nil && n > 0 {
				vehicles = n
			}
		}
		if capacity == 0 {
			if text, ok := fleet.value("capacity", "cap"); ok {
				if c, err := parseIntField(text); err == nil {
					capacity = c
				}
			}
		}
	}
	return vehicles, capacity
}
