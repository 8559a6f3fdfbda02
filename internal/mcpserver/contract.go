package mcpserver

// PageFormatContract describes the content file format that LLM consumers
// should follow when writing pages for an apogee site.
const PageFormatContract = `# Apogee Page Format

Every content file is an optional TOML metadata block, a line holding only
` + "`+++`" + `, then the body.

## Structure

` + "```" + `
title = "Human-readable title"   # optional; falls back to the first "# " heading
tags = ["go", "release"]         # optional; used by listings and filters
categories = ["notes"]           # optional
publishDate = 2025-01-15         # optional TOML date or datetime; orders listings
draft = true                     # optional; drafts are built but never listed
handler = "files"                # optional; hand the file to another handler
+++
# Body

Standard Markdown.
` + "```" + `

## Rules

1. A file without a ` + "`+++`" + ` line is all body.
2. An extra ` + "`+++`" + ` line before the block is accepted.
3. The output path drops the extension: ` + "`posts/hello.md`" + ` builds
   ` + "`/posts/hello`" + ` into ` + "`posts/hello/index.html`" + `.
   ` + "`index.md`" + ` builds its directory.
4. Static files (images, robots.txt) are copied verbatim. Their metadata lives
   in a sidecar ` + "`<file>.toml`" + `.
5. A ` + "`[list]`" + ` table renders a listing of matching pages:

` + "```" + `
[list]
tags = ["news"]
exclude_tags = ["hidden"]
limit = 10
` + "```" + `
`
