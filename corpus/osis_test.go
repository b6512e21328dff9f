package corpus

import (
	"strings"
	"testing"
)

const sampleOSIS = `<?xml version="1.0" encoding="UTF-8"?>
<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace">
  <osisText osisIDWork="KJV">
    <div type="book" osisID="John">
      <chapter osisID="John.3">
        <verse osisID="John.3.16">For God so loved the world,
          that he gave his only begotten Son</verse>
        <verse sID="John.3.17" osisID="John.3.17"/>
        <verse osisID="John.3.18 John.3.19">Joined verses</verse>
      </chapter>
    </div>
  </osisText>
</osis>`

func TestParseOSIS(t *testing.T) {
	c, err := ParseOSIS(strings.NewReader(sampleOSIS))
	if err != nil {
		t.Fatalf("ParseOSIS: %v", err)
	}
	assertCorpus(t, c, Corpus{
		{Reference: "John 3:16", Body: "For God so loved the world, that he gave his only begotten Son"},
		{Reference: "John 3:18-19", Body: "Joined verses"},
	})
}

func TestParseOSISMalformed(t *testing.T) {
	if _, err := ParseOSIS(strings.NewReader(`<osis><verse osisID="a"></osis>`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

const milestoneOSIS = `<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace">
  <osisText osisIDWork="KJV">
    <div type="book" osisID="Gen">
      <chapter sID="Gen.1" osisID="Gen.1"/>
      <p><verse sID="Gen.1.1" osisID="Gen.1.1"/>In the beginning God created the heaven and the earth.<verse eID="Gen.1.1"/>
      <verse sID="Gen.1.2" osisID="Gen.1.2"/>And the earth was without form,<note>Or, empty</note> and void.</p>
      <p>And darkness was upon the face of the deep.<verse eID="Gen.1.2"/></p>
      <verse sID="Gen.1.3" osisID="Gen.1.3"/>And God said, Let there be light.
      <chapter eID="Gen.1"/>
    </div>
  </osisText>
</osis>`

// TestParseOSISMilestones 里程碑式经节的正文位于 sID 与 eID 之间，可以跨越段落。
func TestParseOSISMilestones(t *testing.T) {
	c, err := ParseOSIS(strings.NewReader(milestoneOSIS))
	if err != nil {
		t.Fatalf("ParseOSIS: %v", err)
	}
	assertCorpus(t, c, Corpus{
		{Reference: "Genesis 1:1", Body: "In the beginning God created the heaven and the earth."},
		{Reference: "Genesis 1:2", Body: "And the earth was without form, and void. And darkness was upon the face of the deep."},
		{Reference: "Genesis 1:3", Body: "And God said, Let there be light."},
	})
}

func TestParseOSISWithoutVerses(t *testing.T) {
	_, err := ParseOSIS(strings.NewReader(`<osis><osisText><div type="book" osisID="Gen"/></osisText></osis>`))
	if err == nil {
		t.Fatalf("a document without verses should be an error")
	}
}
