package steps

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/routing-go/internal/adapters/persistence"
	"github.com/andrescamacho/routing-go/internal/application/setup"
	"github.com/andrescamacho/routing-go/internal/application/solve"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
	"github.com/andrescamacho/routing-go/test/helpers"
)

type solverDispatchContext struct {
	container *setup.Container
	journal   *persistence.GormSolveJournalRepository
	request   *solver.Request
	response  *solve.SolveResponse
	err       error
}

func InitializeSolverDispatchScenario(ctx *godog.ScenarioContext) {
	c := &solverDispatchContext{}

	// Given steps
	ctx.Step(`^the following planar waypoints:$`, c.theFollowingPlanarWaypoints)
	ctx.Step(`^the following distance matrix:$`, c.theFollowingDistanceMatrix)
	ctx.Step(`^the following duration matrix:$`, c.theFollowingDurationMatrix)
	ctx.Step(`^node demands "([^"]*)"$`, c.nodeDemands)
	ctx.Step(`^node (\d+) has time window (\d+) to (\d+)$`, c.nodeHasTimeWindow)
	ctx.Step(`^node (\d+) is picked up for delivery at node (\d+)$`, c.nodeIsPickedUpForDeliveryAtNode)
	ctx.Step(`^a fleet of (\d+) vehicles?$`, c.aFleetOfVehicles)
	ctx.Step(`^a fleet of (\d+) vehicles? with capacity (\d+)$`, c.aFleetOfVehiclesWithCapacity)

	// When steps
	ctx.Step(`^I solve the request with engine "([^"]*)"$`, c.iSolveTheRequestWithEngine)

	// Then steps
	ctx.Step(`^the solve should succeed$`, c.theSolveShouldSucceed)
	ctx.Step(`^the solve should fail$`, c.theSolveShouldFail)
	ctx.Step(`^the error should mention "([^"]*)"$`, c.theErrorShouldMention)
	ctx.Step(`^every node should be visited exactly once$`, c.everyNodeShouldBeVisitedExactlyOnce)
	ctx.Step(`^(\d+) vehicles? should be used$`, c.vehiclesShouldBeUsed)
	ctx.Step(`^no route should carry more than (\d+) units$`, c.noRouteShouldCarryMoreThanUnits)
	ctx.Step(`^the route should visit nodes "([^"]*)" in order$`, c.theRouteShouldVisitNodesInOrder)
	ctx.Step(`^node (\d+) should be visited before node (\d+) on the same route$`, c.nodeShouldBeVisitedBeforeNodeOnTheSameRoute)
	ctx.Step(`^the journal should hold (\d+) runs? for engine "([^"]*)"$`, c.theJournalShouldHoldRunsForEngine)

	// Setup/teardown
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, c.setupContainer()
	})
}

func (c *solverDispatchContext) setupContainer() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return fmt.Errorf("failed to reset journal table: %w", err)
	}

	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Providers.Euclidean.Enabled = true
	cfg.Providers.Haversine.Enabled = true
	cfg.Data.Root = os.TempDir()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c.journal = persistence.NewGormSolveJournalRepository(helpers.SharedTestDB, nil)
	container, err := setup.NewContainer(cfg, logger, c.journal, nil)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	c.container = container
	c.request = &solver.Request{}
	c.response = nil
	c.err = nil
	return nil
}

func (c *solverDispatchContext) theFollowingPlanarWaypoints(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		if len(row.Cells) < 3 {
			return fmt.Errorf("waypoint rows need id, x and y")
		}
		var x, y float64
		fmt.Sscanf(row.Cells[1].Value, "%f", &x)
		fmt.Sscanf(row.Cells[2].Value, "%f", &y)

		c.request.Waypoints = append(c.request.Waypoints, solver.Waypoint{
			ID: row.Cells[0].Value,
			X:  &x,
			Y:  &y,
		})
	}
	return nil
}

// Matrix tables carry no header row; every row is a matrix row.

func (c *solverDispatchContext) theFollowingDistanceMatrix(table *godog.Table) error {
	distances := make([][]float64, len(table.Rows))
	for i, row := range table.Rows {
		distances[i] = make([]float64, len(row.Cells))
		for j, cell := range row.Cells {
			value, err := strconv.ParseFloat(cell.Value, 64)
			if err != nil {
				return fmt.Errorf("failed to parse distance cell (%d,%d): %w", i, j, err)
			}
			distances[i][j] = value
		}
	}

	if c.request.Matrix == nil {
		c.request.Matrix = &matrix.Matrix{}
	}
	c.request.Matrix.Distances = distances
	return nil
}

func (c *solverDispatchContext) theFollowingDurationMatrix(table *godog.Table) error {
	durations := make([][]int64, len(table.Rows))
	for i, row := range table.Rows {
		durations[i] = make([]int64, len(row.Cells))
		for j, cell := range row.Cells {
			value, err := strconv.ParseInt(cell.Value, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse duration cell (%d,%d): %w", i, j, err)
			}
			durations[i][j] = value
		}
	}

	if c.request.Matrix == nil {
		c.request.Matrix = &matrix.Matrix{}
	}
	c.request.Matrix.Durations = durations
	return nil
}

func (c *solverDispatchContext) nodeDemands(list string) error {
	demands, err := parseInt64List(list)
	if err != nil {
		return fmt.Errorf("failed to parse demands: %w", err)
	}
	c.request.Demands = demands
	return nil
}

func (c *solverDispatchContext) nodeHasTimeWindow(node, start, end int) error {
	for len(c.request.NodeTimeWindows) <= node {
		c.request.NodeTimeWindows = append(c.request.NodeTimeWindows, nil)
	}
	c.request.NodeTimeWindows[node] = &solver.TimeWindow{Start: int64(start), End: int64(end)}
	return nil
}

func (c *solverDispatchContext) nodeIsPickedUpForDeliveryAtNode(pickup, delivery int) error {
	c.request.PickupDeliveryPairs = append(c.request.PickupDeliveryPairs, solver.PickupDeliveryPair{
		Pickup:   pickup,
		Delivery: delivery,
	})
	return nil
}

func (c *solverDispatchContext) aFleetOfVehicles(count int) error {
	c.request.Fleet = solver.Fleet{Vehicles: make([]solver.Vehicle, count)}
	return nil
}

func (c *solverDispatchContext) aFleetOfVehiclesWithCapacity(count, capacity int) error {
	vehicles := make([]solver.Vehicle, count)
	for i := range vehicles {
		vehicles[i].Capacity = []int64{int64(capacity)}
	}
	c.request.Fleet = solver.Fleet{Vehicles: vehicles}
	return nil
}

func (c *solverDispatchContext) iSolveTheRequestWithEngine(engine string) error {
	c.request.Engine = engine

	response, err := c.container.Mediator.Send(context.Background(), &solve.SolveCommand{Request: c.request})
	if err == nil {
		solved, ok := response.(*solve.SolveResponse)
		if !ok {
			return fmt.Errorf("unexpected response type: %T", response)
		}
		c.response = solved
	}
	c.err = err

	return nil
}

func (c *solverDispatchContext) theSolveShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("solve should not return error: %w", c.err)
	}
	if c.response == nil || c.response.Routes == nil {
		return fmt.Errorf("response should carry routes")
	}
	if !c.response.Routes.Success() {
		return fmt.Errorf("expected status %q, got %q: %s",
			solver.StatusSuccess, c.response.Routes.Status, c.response.Routes.Message)
	}
	return nil
}

func (c *solverDispatchContext) theSolveShouldFail() error {
	if c.err == nil {
		return fmt.Errorf("solve should have failed")
	}
	return nil
}

func (c *solverDispatchContext) theErrorShouldMention(fragment string) error {
	if c.err == nil {
		return fmt.Errorf("no error was recorded")
	}
	if !strings.Contains(c.err.Error(), fragment) {
		return fmt.Errorf("error %q does not mention %q", c.err.Error(), fragment)
	}
	return nil
}

func (c *solverDispatchContext) everyNodeShouldBeVisitedExactlyOnce() error {
	visits := make(map[int]int)
	for _, route := range c.response.Routes.Routes {
		seq := route.NodeIndexes
		for i, node := range seq {
			if i == 0 || i == len(seq)-1 {
				continue // depot bookends
			}
			visits[node]++
		}
	}

	for node := 0; node < c.nodeCount(); node++ {
		if node == c.request.DepotIndex {
			continue
		}
		if visits[node] != 1 {
			return fmt.Errorf("node %d visited %d times, want exactly once", node, visits[node])
		}
	}
	return nil
}

func (c *solverDispatchContext) vehiclesShouldBeUsed(count int) error {
	if used := c.response.Routes.VehiclesUsed(); used != count {
		return fmt.Errorf("expected %d vehicles used, got %d", count, used)
	}
	return nil
}

func (c *solverDispatchContext) noRouteShouldCarryMoreThanUnits(limit int) error {
	for _, route := range c.response.Routes.Routes {
		var load int64
		for _, node := range route.NodeIndexes {
			if node < len(c.request.Demands) && c.request.Demands[node] > 0 {
				load += c.request.Demands[node]
			}
		}
		if load > int64(limit) {
			return fmt.Errorf("route %s carries %d units, limit is %d", route.VehicleID, load, limit)
		}
	}
	return nil
}

func (c *solverDispatchContext) theRouteShouldVisitNodesInOrder(order string) error {
	want, err := parseInt64List(order)
	if err != nil {
		return fmt.Errorf("failed to parse expected order: %w", err)
	}
	if len(c.response.Routes.Routes) != 1 {
		return fmt.Errorf("expected a single route, got %d", len(c.response.Routes.Routes))
	}

	got := c.response.Routes.Routes[0].NodeIndexes
	if len(got) != len(want) {
		return fmt.Errorf("visit order %v, want %v", got, want)
	}
	for i := range want {
		if int64(got[i]) != want[i] {
			return fmt.Errorf("visit order %v, want %v", got, want)
		}
	}
	return nil
}

func (c *solverDispatchContext) nodeShouldBeVisitedBeforeNodeOnTheSameRoute(pickup, delivery int) error {
	for _, route := range c.response.Routes.Routes {
		pickupAt, deliveryAt := -1, -1
		for i, node := range route.NodeIndexes {
			if node == pickup && pickupAt < 0 {
				pickupAt = i
			}
			if node == delivery {
				deliveryAt = i
			}
		}
		switch {
		case pickupAt >= 0 && deliveryAt >= 0:
			if pickupAt < deliveryAt {
				return nil
			}
			return fmt.Errorf("node %d visited at position %d, after node %d at position %d",
				pickup, pickupAt, delivery, deliveryAt)
		case pickupAt >= 0 || deliveryAt >= 0:
			return fmt.Errorf("nodes %d and %d were split across routes", pickup, delivery)
		}
	}
	return fmt.Errorf("nodes %d and %d were not visited", pickup, delivery)
}

func (c *solverDispatchContext) theJournalShouldHoldRunsForEngine(count int, engine string) error {
	counts, err := c.journal.CountByEngine(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count journaled runs: %w", err)
	}
	if got := counts[engine]; got != int64(count) {
		return fmt.Errorf("expected %d journaled runs for engine %q, got %d", count, engine, got)
	}
	return nil
}

// nodeCount is the instance size implied by the request: the matrix dimension
// when one was given, the waypoint count otherwise.
func (c *solverDispatchContext) nodeCount() int {
	if c.request.Matrix != nil {
		return len(c.request.Matrix.Distances)
	}
	return len(c.request.Waypoints)
}

func parseInt64List(list string) ([]int64, error) {
	parts := strings.Split(list, ",")
	values := make([]int64, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad element %q: %w", part, err)
		}
		values[i] = value
	}
	return values, nil
}
