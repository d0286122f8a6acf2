package blob

import "testing"

func TestPublicBase(t *testing.T) {
	cases := []struct {
		o    Options
		want string
	}{
		{Options{Bucket: "hotels", Region: "us-east-1"}, "https://hotels.s3.us-east-1.amazonaws.com"},
		{Options{Bucket: "hotels", Endpoint: "http://minio:9000/"}, "http://minio:9000/hotels"},
		{Options{Bucket: "hotels", Endpoint: "http://minio:9000", PublicBase: "https://cdn.example.com/"}, "https://cdn.example.com"},
	}
	for _, c := range cases {
		if got := publicBase(c.o); got != c.want {
			t.Errorf("publicBase(%+v) = %q, want %q", c.o, got, c.want)
		}
	}
}

func TestURL(t *testing.T) {
	s := &Store{publicBase: "https://cdn.example.com"}
	if got := s.URL("/listings/a.jpg"); got != "https://cdn.example.com/listings/a.jpg" {
		t.Fatalf("got %q", got)
	}
}
