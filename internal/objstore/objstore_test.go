package objstore

import "testing"

func TestConfigValidate(t *testing.T) {
	valid := Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "records"}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no endpoint", func(c *Config) { c.Endpoint = " " }, true},
		{"no secret", func(c *Config) { c.SecretKey = "" }, true},
		{"no bucket", func(c *Config) { c.Bucket = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	c, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "records", Prefix: "/highschool/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.objectKey("/rec-1.txt"); got != "highschool/rec-1.txt" {
		t.Errorf("objectKey = %q", got)
	}

	c.prefix = ""
	if got := c.objectKey(" rec-1.txt "); got != "rec-1.txt" {
		t.Errorf("objectKey without prefix = %q", got)
	}
}

func TestEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("empty config should be disabled")
	}
	if !(Config{Endpoint: "s3.amazonaws.com"}).Enabled() {
		t.Error("endpoint should enable the client")
	}
}
