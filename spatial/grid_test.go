package spatial

import "testing"

func TestInsertAndQueryFindsNeighbor(t *testing.T) {
	g := NewGrid(100, 100, 10, false)
	g.Insert(1, 50, 50)
	g.Insert(2, 55, 50)
	g.Insert(3, 90, 90)

	neighbors := g.QueryRadiusInto(nil, 50, 50, 10, 1)
	found := false
	for _, n := range neighbors {
		if n.Item.ID == 2 {
			found = true
		}
		if n.Item.ID == 1 {
			t.Error("query should exclude the querying item's own id")
		}
		if n.Item.ID == 3 {
			t.Error("item outside radius should not be returned")
		}
	}
	if !found {
		t.Error("expected to find item 2 within radius")
	}
}

func TestClearRemovesAllItems(t *testing.T) {
	g := NewGrid(100, 100, 10, false)
	g.Insert(1, 10, 10)
	g.Clear()
	neighbors := g.QueryRadiusInto(nil, 10, 10, 50, -1)
	if len(neighbors) != 0 {
		t.Errorf("expected no neighbors after Clear, got %d", len(neighbors))
	}
}

func TestNonWrappingGridSkipsOutOfRangeInsert(t *testing.T) {
	g := NewGrid(100, 100, 10, false)
	g.Insert(1, -5, 50)
	g.Insert(2, 150, 50)
	neighbors := g.QueryRadiusInto(nil, 0, 50, 20, -1)
	for _, n := range neighbors {
		if n.Item.ID == 1 || n.Item.ID == 2 {
			t.Error("out-of-range insert on non-wrapping grid should be dropped")
		}
	}
}

func TestWrappingGridFindsAcrossBoundary(t *testing.T) {
	g := NewGrid(100, 100, 10, true)
	g.Insert(1, 2, 50)
	neighbors := g.QueryRadiusInto(nil, 98, 50, 10, -1)
	found := false
	for _, n := range neighbors {
		if n.Item.ID == 1 {
			found = true
			if n.DX <= 0 {
				t.Errorf("expected wrap-around delta to be positive (short way round), got %f", n.DX)
			}
		}
	}
	if !found {
		t.Error("expected wrapping grid to find neighbor across the world boundary")
	}
}

func TestQueryRespectsMaxResults(t *testing.T) {
	g := NewGrid(200, 200, 10, false)
	for i := 0; i < MaxQueryResults+50; i++ {
		g.Insert(i, 100, 100)
	}
	neighbors := g.QueryRadiusInto(nil, 100, 100, 5, -1)
	if len(neighbors) > MaxQueryResults {
		t.Errorf("expected at most %d neighbors, got %d", MaxQueryResults, len(neighbors))
	}
}
