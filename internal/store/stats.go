package store

type DashboardStats struct {
	TotalProjects    int
	TotalOrders      int
	TotalRequests    int
	OrdersByStatus   map[string]int
	RequestsByStatus map[string]int
}

func (s *Store) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus:   make(map[string]int),
		RequestsByStatus: make(map[string]int),
	}

	if err := s.DB.QueryRow("SELECT COUNT(*) FROM projects").Scan(&stats.TotalProjects); err != nil {
		return nil, err
	}

	var err error
	if stats.TotalOrders, err = s.countByStatus("orders", stats.OrdersByStatus); err != nil {
		return nil, err
	}
	if stats.TotalRequests, err = s.countByStatus("project_requests", stats.RequestsByStatus); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) countByStatus(table string, into map[string]int) (int, error) {
	rows, err := s.DB.Query("SELECT status, COUNT(*) FROM " + table + " GROUP BY status")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return 0, err
		}
		into[status] = count
		total += count
	}
	return total, rows.Err()
}
