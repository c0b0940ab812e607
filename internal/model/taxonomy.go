package model

// Sport is reference data; Name is unique.
type Sport struct {
    ID       uint64 `json:"id"`
    Name     string `json:"name"`
    IsActive bool   `json:"isActive"`
}

// Qualification is reference data; Name is unique.
type Qualification struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
}
