package crew

// Task descriptions for the built-in crew. The {{artifact}} placeholder is
// replaced with the code under review at dispatch time; the decision task
// additionally receives its dependencies' findings, injected by the prompt
// builder.

const qualityDescription = `Analyze the following code for quality issues:

` + "```" + `
{{artifact}}
` + "```" + `

Review for:
1. Code readability and clarity
2. Naming conventions (variables, functions, classes)
3. Code structure and organization
4. Potential bugs or logic errors
5. Adherence to coding standards (including Drupal CS if applicable)
6. Areas that would be hard to maintain
7. Drupal-specific issues (if Drupal/PHP code): hook implementations,
   Entity API usage, service and dependency injection patterns,
   Workspaces module compatibility, deprecated API usage

For each issue found, explain what the issue is, why it matters, and how
to fix it.`

const securityDescription = `Analyze the following code for security vulnerabilities:

` + "```" + `
{{artifact}}
` + "```" + `

Check for:
1. Injection vulnerabilities (SQL, command, etc.)
2. Cross-site scripting (XSS)
3. Authentication/authorization issues
4. Sensitive data exposure
5. Input validation problems
6. Insecure configurations
7. Drupal-specific security issues (if applicable): unsafe user input
   handling, missing access checks, Form API security, Twig template
   escaping, file upload vulnerabilities

For each vulnerability found, explain what it is, how it could be
exploited, the potential impact, and how to remediate it.`

const frontendDescription = `Analyze the following code for frontend concerns:

` + "```" + `
{{artifact}}
` + "```" + `

Review for:
1. Accessibility (WCAG 2.1 AA): semantic HTML, ARIA usage, keyboard
   navigation, screen reader compatibility
2. CSS/SCSS quality: naming conventions, responsive design, specificity
3. JavaScript quality: modern patterns (ES6+), event handling, error
   handling, Drupal.behaviors (if Drupal)
4. Twig template quality (if applicable): escaping, logic separation,
   theme patterns
5. Performance: asset optimization, lazy loading, bundle size

For each issue found, explain what it is, why it matters for users, and
how to fix it.

Note: if the code is purely backend (no frontend components), state that
frontend review is not applicable and explain why.`

const infrastructureDescription = `Analyze the following code for infrastructure and operational concerns:

` + "```" + `
{{artifact}}
` + "```" + `

Review for:
1. Caching: cache tags and contexts, invalidation, page cache compatibility
2. Configuration management: config vs content, environment-specific code,
   config export compatibility
3. Database/performance: query efficiency, N+1 problems, memory usage,
   batch processing needs
4. Deployment readiness: update hooks, rollback safety, environment-specific
   paths and URLs, debug code removal
5. Logging and error handling: appropriate levels, error visibility

For each issue found, explain what it is, the operational risk, and how to
fix it.

Note: if the code is a simple script without infrastructure implications,
state what considerations would apply if this were production code.`

const decisionDescription = `Based on the code quality analysis, security review, frontend review, and
infrastructure review provided by your colleagues, make a final review
decision for this code:

` + "```" + `
{{artifact}}
` + "```" + `

Consider:
1. Severity of code quality issues found
2. Severity of security vulnerabilities found
3. Accessibility and frontend concerns
4. Infrastructure and deployment risks
5. Overall risk of merging this code
6. Effort required to address the issues

Make a clear decision: APPROVE, REQUEST CHANGES, or REJECT.`
